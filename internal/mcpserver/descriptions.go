package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAudit() string {
	return `Counts o200k_base tokens in every Rust source file of a crate and grades the tokens-per-line ratio.

USE WHEN:
- Estimating how much of a context window a crate will consume
- Checking whether a refactor made the code leaner or more verbose
- Deciding which files to include when feeding a crate to a model

INTERPRETING RESULTS:
- T/L (tokens per line) is the headline metric: lower is leaner
- A+ at or below 5.0, A at or below 7.0, B at or below 9.0, C at or below 12.0, D above that
- Files with a high T/L but few lines are usually long signatures or literals
- Context shows the smallest standard window (8K to 1M) that holds the whole crate

METRICS RETURNED:
- Per-file: path, lines, tokens, ratio
- Totals: lines, tokens, code/comment/blank line counts, grade, verdict
- Distribution of per-file ratios (mean, stddev, median, p90, max)`
}

func describeTop() string {
	return `Lists the files that consume the most tokens, heaviest first.

USE WHEN:
- Looking for the best place to start trimming a crate
- Finding files that dominate the context budget
- Reviewing which modules grew after a change

INTERPRETING RESULTS:
- Share is the file's percentage of all tokens in the crate
- A handful of files holding most of the tokens means targeted cleanup pays off
- A high T/L on a heavy file points to verbose code rather than sheer size

METRICS RETURNED:
- Ranked files: rank, path, lines, tokens, ratio, share
- Combined tokens and share of the listed files, crate total`
}

func describeGrade() string {
	return `Returns the crate's token efficiency grade and a shields.io badge URL.

USE WHEN:
- Reporting a single quality number for a crate
- Generating a README badge
- Comparing crates at a glance

INTERPRETING RESULTS:
- Grades run A+ (best), A, B, C, D (worst)
- The verdict suggests the next step for the grade

METRICS RETURNED:
- ratio, grade, color, verdict, file/line/token totals, badge_url`
}

func describeDeep() string {
	return `Finds repeated code that costs tokens: blocks duplicated across files and near-duplicate functions within a file.

USE WHEN:
- Hunting for copy-pasted code to extract into helpers
- Estimating how many tokens a deduplication pass would save
- Reviewing a crate before handing it to a model with a tight budget

INTERPRETING RESULTS:
- Duplicate blocks are windows of 3 normalized non-blank lines repeated in 2 or more files
- Savings for a block is 80% of its tokens for every copy beyond the first
- Near-duplicate functions in one file share more than 75% of their body words
- Savings percentage is relative to the whole crate's tokens

METRICS RETURNED:
- duplicate_blocks: span, file count, preview, locations, tokens per instance, savings
- near_duplicates: file, both function names and lines, similarity, savings
- Totals: pattern count, saveable tokens, percentage of the crate`
}

func describeHistory() string {
	return `Measures token counts at recent commits to show how a crate's efficiency changed over time.

USE WHEN:
- Checking whether recent work made the crate heavier
- Finding the commit where tokens jumped
- Reporting efficiency trends in a review

INTERPRETING RESULTS:
- Snapshots are newest first; the trend compares oldest with newest
- A positive tokens-per-commit slope means the crate keeps growing
- R² near 1 means the growth is steady rather than a single jump

METRICS RETURNED:
- Per commit: short SHA, summary, files, lines, tokens, ratio
- Summary: token delta and percentage, linear fit slope and R²

REQUIRES: the path must be inside a git repository.`
}
