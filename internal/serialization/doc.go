// Package serialization implements the .gaze checkpoint format.
//
//	Fixed header (64 bytes, little endian):
//	  0x00  [4]  magic "GAZE"
//	  0x04  [4]  format version (2)
//	  0x08  [4]  flags
//	  0x0C  [4]  reserved
//	  0x10  [8]  JSON header size
//	  0x18  [8]  data section size
//	  0x20  [32] SHA-256 of the data section
//	[JSON header]
//	[zero padding to a 64-byte boundary]
//	[tensor data, in the order listed by the header]
//
// The JSON header lists every tensor (name, dtype, shape, offset and size
// relative to the data section) sorted by name, plus free-form metadata.
//
// Example:
//
//	w, err := serialization.NewWriter("model.gaze")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = w.WriteStateDict(model.StateDict(), "gazenet", map[string]string{"depth": "8"})
//
//	r, err := serialization.NewReader("model.gaze")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	stateDict, err := r.ReadStateDict()
package serialization
