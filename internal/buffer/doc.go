// Package buffer bounds the rows materialized for one query response.
//
// The executor projects each decoded event into its output form and adds it
// to a RowBuffer. Two limits apply:
//
//   - maxRows: the request's limit. Once reached, Full reports true and the
//     executor stops decoding.
//   - maxBytes: the configured response cap. Add fails with
//     errors.ErrResponseTooLarge instead of growing past it.
//
// Typical use:
//
//	buf := buffer.New(req.Limit, maxResponseBytes)
//	for evt, err := range decoder.All() {
//	    if err != nil {
//	        return err
//	    }
//	    if err := buf.Add(project(evt)); err != nil {
//	        return err
//	    }
//	    if buf.Full() {
//	        break
//	    }
//	}
//	rows := buf.Drain()
//
// Sizes are estimates of the encoded row, not exact byte counts.
package buffer
