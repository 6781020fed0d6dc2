package metrics

import "time"

// RecordNewsFetched records how many articles a news search returned.
func RecordNewsFetched(company string, count int) {
	NewsArticlesFetchedTotal.WithLabelValues(company).Add(float64(count))
}

// RecordNewsFetchError records a failed news search.
func RecordNewsFetchError(company string) {
	NewsFetchErrorsTotal.WithLabelValues(company).Inc()
}

// RecordDigestArticle records the outcome of processing one article.
func RecordDigestArticle(company string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	DigestArticlesTotal.WithLabelValues(company, result).Inc()
}

// RecordDigestDuration records the wall time of one company digest.
func RecordDigestDuration(company string, d time.Duration) {
	DigestDuration.WithLabelValues(company).Observe(d.Seconds())
}

// RecordContentFetchSuccess records a successful content fetch and the text size.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records that the feed text was long enough.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}
