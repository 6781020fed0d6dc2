package pathutil_test

import (
	"fmt"

	"company-pulse/internal/handler/http/pathutil"
)

func ExampleNormalizePath() {
	fmt.Println(pathutil.NormalizePath("/v1/companies/Acme/news"))
	fmt.Println(pathutil.NormalizePath("/v1/companies/Globex/news?limit=3"))
	fmt.Println(pathutil.NormalizePath("/admin/login"))

	// Output:
	// /v1/companies/:name/news
	// /v1/companies/:name/news
	// /other
}
