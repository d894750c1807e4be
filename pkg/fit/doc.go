// Package fit decodes and encodes FIT (Flexible and Interoperable Data
// Transfer) files.
//
// A FIT file is a header, a sequence of records and a trailing CRC. Records
// are either definition records, which describe the layout of the data
// records that follow under the same local message number, or data records
// carrying one message each.
//
// # Decoding
//
//	dec := fit.NewDecoder(data)
//	var mesgs fit.MesgCollector
//	dec.AddMesgListener(&mesgs)
//	if err := dec.Read(fit.DecodeModeNormal); err != nil {
//		return err
//	}
//
// Every data record produces a fresh Mesg owned by the listeners. Component
// fields are expanded after a message is read; fields produced by expansion
// report IsExpanded.
//
// # Encoding
//
//	enc := fit.NewEncoder()
//	if err := enc.Write(mesgs.Mesgs()); err != nil {
//		return err
//	}
//	data, err := enc.Close()
//
// The encoder emits a definition record whenever the layout of a message
// differs from the definition last written for its local message number.
//
// # Sessions
//
// The Accumulator and DeveloperDataLookup used by a Decoder belong to that
// decoder. Decoders are not safe for concurrent use; decode files
// concurrently with one Decoder per file.
package fit
