package mcpserver

// Tool descriptions with interpretation guidance for LLMs. Each explains
// what the tool does, when to use it, and how to read the results.

func describeFlow() string {
	return `Builds control flow graphs for every function under the given paths and reports blocks, edges, execution paths and complexity metrics.

USE WHEN:
- Understanding how a function branches before editing it
- Estimating the test cases needed to cover a function
- Checking whether a refactor changed a function's structure

INTERPRETING RESULTS:
- Each function gets blocks (entry, exit, conditional, loop, try/catch, return) and typed edges (branch-true, branch-false, loop-back, exception)
- cyclomatic_complexity > 10 means many paths; > 20 is a strong refactoring candidate
- timed_out: true means the function exceeded the analysis budget and only a minimal entry/exit graph is reported
- dead_code lists start lines of blocks unreachable from the entry

RESULTS RETURNED:
- Per file: function analyses with blocks, edges, calls, paths, statistics, metrics
- Summary: totals, average and max cyclomatic complexity`
}

func describeDeadcode() string {
	return `Finds unreachable blocks inside function bodies using control flow reachability.

USE WHEN:
- Cleaning up after refactors that removed branches
- Verifying that early returns or thrown exceptions do not orphan code

INTERPRETING RESULTS:
- Lines listed are start lines of blocks no path from the function entry reaches
- Analysis is per function and intraprocedural: an unused but reachable function is NOT reported
- Pattern-built graphs (no grammar available) over-approximate reachability, so absence of findings there is weak evidence

RESULTS RETURNED:
- file, function, unreachable line numbers`
}

func describeHotpaths() string {
	return `Ranks the most complex acyclic routes through each function.

USE WHEN:
- Prioritizing which paths to cover with tests
- Finding the branch-heavy route through a hot function

INTERPRETING RESULTS:
- Up to 5 paths per function, ordered by descending complexity then ascending length
- Each path is a block id sequence from the entry block
- Complexity counts the decision blocks along the route

RESULTS RETURNED:
- file, function, rank, block sequence`
}

func describeCalls() string {
	return `Lists the function calls inside each analyzed function with their control flow context.

USE WHEN:
- Checking whether a call happens inside a loop, a conditional branch or a try/catch
- Sketching a local call graph for a file

INTERPRETING RESULTS:
- call_type distinguishes direct calls from virtual (receiver) calls
- is_in_loop means the call may execute many times per invocation
- is_conditional means the call is not on every path

RESULTS RETURNED:
- caller, target, line, call type, context flags`
}
