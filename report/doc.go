// Package report persists training runs: a JSON summary (optionally LZ4 or
// ZSTD compressed), one accuracy table per evaluated data set, and PNG
// renderings of the centroids and accuracy heat maps.
//
//	r := report.New(mdl)
//	r.AddEvaluation("test", testConsensus)
//	keys, err := report.NewWriter(store, report.WithCompression(report.CompressionZSTD)).
//	    Write(ctx, "runs/"+r.RunID.String(), r)
//
// Load reads a report back; Report.Model turns it into a kclust.Model for
// prediction.
package report
