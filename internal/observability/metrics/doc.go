// Package metrics holds the process-wide Prometheus collectors for HTTP
// traffic and the digest pipeline. Provider-level AI metrics live next to the
// code that records them.
//
//	start := time.Now()
//	articles, err := news.FetchCompanyNews(ctx, "Acme", 5)
//	if err != nil {
//	    metrics.RecordNewsFetchError("Acme")
//	}
//	metrics.RecordNewsFetched("Acme", len(articles))
//	metrics.RecordDigestDuration("Acme", time.Since(start))
package metrics
