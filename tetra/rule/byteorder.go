package rule

import "encoding/binary"

// nativeOrder is the host's native byte order. Spec §6: "Endianness is
// native-host; no versioning is embedded."
var nativeOrder = binary.NativeEndian
