package dicomstore

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// uidRoot is the ISO arc for UUID-derived UIDs (PS3.5 B.2).
const uidRoot = "2.25."

// Generate derives a replacement for one value component. The result depends
// only on (vr, original, salt), so one original UID maps to the same new UID in
// every file of a batch and references between files survive.
//
// UI attributes get a "2.25.<decimal UUID>" UID; other text attributes get a
// 16-character hex token, short enough for SH. Empty components stay empty.
func Generate(vr, original, salt string) string {
	if original == "" {
		return ""
	}
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(salt+"\x00"+original))
	if vr == "UI" {
		return uidRoot + new(big.Int).SetBytes(u[:]).String()
	}
	return strings.ToUpper(hex.EncodeToString(u[:8]))
}
