// Package download defines the download event schema shared by the query
// path and the archive export.
//
// A download event is one observed request for an episode's media, logged by
// the ingestion path as one tab-separated row of exactly 19 columns. The column
// order is a wire-format contract: the tsv and json-a output formats emit the
// values positionally, so reordering FieldNames breaks existing consumers.
//
// # Event
//
// Event carries the 19 fields as named struct fields declared in schema order:
//
//	evt, err := download.FromValues(strings.Split(line, "\t"))
//	if err != nil {
//	    return err
//	}
//	if evt.IsBot() {
//	    // automated traffic
//	}
//
// Values returns the fields positionally and is the inverse of FromValues.
//
// # Output formats
//
// Format names the negotiated output encoding of a query:
//
//	download.FormatTSV   // tab-joined row per event (default)
//	download.FormatJSONA // JSON array of the 19 values per event
//	download.FormatJSON  // JSON object keyed by field name per event
package download
