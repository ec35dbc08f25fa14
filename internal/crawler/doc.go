// Package crawler finds DOCX documents linked from HTML pages, so a
// download page or directory listing can be given instead of each
// document URL.
//
//	links, err := crawler.DocumentLinks(page, "https://example.com/downloads/",
//		crawler.WithMaxLinks(20))
package crawler
