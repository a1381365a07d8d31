package capview

import (
	"fmt"

	"github.com/danmuck/ipcbench/internal/verify"
)

// filePart adapts a decoded FilePart to the verifier's capability
// interface.
type filePart struct {
	part FilePart
}

func (p filePart) Data() ([]byte, error) { return p.part.Data() }
func (p filePart) DeclaredSize() uint64  { return p.part.DataSizeToVerify() }
func (p filePart) DeclaredHash() uint64  { return p.part.DataHashToVerify() }

// Parts flattens the decoded response into verifiable parts, in list
// order.
func Parts(rsp GetCacheRsp) ([]verify.Part, error) {
	list, err := rsp.FileParts()
	if err != nil {
		return nil, fmt.Errorf("capview: file parts: %w", err)
	}
	parts := make([]verify.Part, list.Len())
	for i := range parts {
		parts[i] = filePart{part: list.At(i)}
	}
	return parts, nil
}
