// Package check runs the title marker validator across many beatmap files.
//
// Files are loaded and validated concurrently with a bounded worker count.
// Each file's violations keep the validator's ordering, and the report lists
// files sorted by path so output is reproducible regardless of scheduling. A
// file that cannot be parsed is recorded on its FileResult and logged; it does
// not abort the run.
package check
