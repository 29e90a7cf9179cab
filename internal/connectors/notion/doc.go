// Package notion reads and writes dataset records in a Notion database.
//
// Requests go through a retrying HTTP client (429 and 5xx responses are
// retried with backoff, honouring Retry-After) layered over a token
// bucket so that paging through a large database stays under Notion's
// average request rate.
//
// Missing credentials are not an error for reads: Fetch logs a warning
// and returns no records, which sends callers to the sample set.
package notion
