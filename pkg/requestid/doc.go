// Package requestid correlates page requests with the API calls they make.
//
// Middleware attaches an ID to every incoming request: a valid client supplied
// X-Request-ID is reused, anything else is replaced by a fresh UUID. The ID is
// echoed in the response, stored in the context (FromContext) and added to log
// records by LoggerExtractor. Transport copies it onto outgoing requests, so
// the API client built for server side rendering forwards it:
//
//	api := apiclient.New(baseURL, apiclient.WithHTTPClient(&http.Client{
//		Transport: requestid.Transport(nil),
//	}))
package requestid
