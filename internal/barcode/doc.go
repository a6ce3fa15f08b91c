// Package barcode cross-checks row decodes against an independent
// Interleaved 2 of 5 reader.
//
// The reader is gozxing's ITF implementation, which locates the symbol with
// its own binarizer and start/end pattern search. Agreement between the two
// decoders is reported, never enforced.
package barcode
