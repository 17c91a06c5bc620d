// Package search retrieves evidence for a research run from a hosted web
// search API.
//
// Available providers:
//
//   - Tavily: the default; the allow-list is passed as include_domains and
//     the depth parameter maps to basic or advanced search
//   - Brave: the allow-list is expressed as site: operators in the query
//
// A Retriever wraps one Searcher and enforces the run contract: exactly one
// provider call bounded by a timeout, results cleaned, filtered against the
// allow-list and truncated to the requested count, and every failure
// reported as a *model.RunError of kind model.ErrRetrieval.
//
// # Example
//
//	searcher := search.NewTavily(apiKey, "", httpClient)
//	retriever := search.NewRetriever(searcher, 30*time.Second, logger)
//	evidence, err := retriever.Retrieve(ctx, settings)
package search
