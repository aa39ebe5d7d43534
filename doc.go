// Package html2pdf converts HTML documents to PDF using headless Chrome.
//
// # Quick Start
//
// Resolve the input and output, then run a job:
//
//	in, out, err := html2pdf.ResolveIO(ctx, "report.html", "report.pdf", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := html2pdf.NewConverter(html2pdf.WithLogger(logger))
//	err = conv.Convert(ctx, html2pdf.Job{
//	    Input:       in,
//	    Output:      out,
//	    PageFormat:  html2pdf.FormatA4,
//	    Orientation: html2pdf.Portrait,
//	    Timeout:     5 * time.Minute,
//	})
//
// Inputs may be local paths, http(s):// or file:// URLs, or s3:// objects.
// Outputs may be local paths or s3:// objects. S3 paths need an
// [ObjectStore], usually an *s3store.Store.
//
// # Browser Sessions
//
// Each conversion first tries the shared browser recorded in the endpoint
// file written by [Server.Start]. Such a session is Borrowed: when the
// conversion ends only the connection is dropped. When no shared browser
// answers, a disposable browser is launched with its own temporary
// profile. That session is Owned and the browser is terminated and its
// profile removed on release, whatever the outcome of the conversion.
//
// # Browser Requirements
//
// A Chrome or Chromium executable is looked up in the html2pdf cache
// directory ($HOME/.cache/html2pdf, or HTML2PDF_CACHE_DIR), then on the
// system. Run "html2pdf browser install" to populate the cache.
package html2pdf
