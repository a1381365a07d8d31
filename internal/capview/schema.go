package capview

// Hand-maintained accessors for the benchmark response schema, in the
// shape capnpc-go generates:
//
//	struct GetCacheRsp { fileParts @0 :List(FilePart); }
//	struct FilePart {
//	  data             @0 :Data;
//	  dataSizeToVerify @1 :UInt64;
//	  dataHashToVerify @2 :UInt64;
//	}

import (
	"capnproto.org/go/capnp/v3"
)

// GetCacheRsp is the root of the benchmark response payload.
type GetCacheRsp struct{ capnp.Struct }

func NewRootGetCacheRsp(s *capnp.Segment) (GetCacheRsp, error) {
	st, err := capnp.NewRootStruct(s, capnp.ObjectSize{DataSize: 0, PointerCount: 1})
	return GetCacheRsp{Struct: st}, err
}

func ReadRootGetCacheRsp(msg *capnp.Message) (GetCacheRsp, error) {
	root, err := msg.Root()
	return GetCacheRsp{Struct: root.Struct()}, err
}

func (s GetCacheRsp) FileParts() (FilePart_List, error) {
	p, err := s.Struct.Ptr(0)
	return FilePart_List{List: p.List()}, err
}

func (s GetCacheRsp) NewFileParts(n int32) (FilePart_List, error) {
	l, err := capnp.NewCompositeList(s.Struct.Segment(), capnp.ObjectSize{DataSize: 16, PointerCount: 1}, n)
	if err != nil {
		return FilePart_List{}, err
	}
	err = s.Struct.SetPtr(0, l.ToPtr())
	return FilePart_List{List: l}, err
}

// FilePart is one verifiable unit of the response.
type FilePart struct{ capnp.Struct }

func (s FilePart) Data() ([]byte, error) {
	p, err := s.Struct.Ptr(0)
	return p.Data(), err
}

func (s FilePart) SetData(v []byte) error {
	return s.Struct.SetData(0, v)
}

func (s FilePart) DataSizeToVerify() uint64 {
	return s.Struct.Uint64(0)
}

func (s FilePart) SetDataSizeToVerify(v uint64) {
	s.Struct.SetUint64(0, v)
}

func (s FilePart) DataHashToVerify() uint64 {
	return s.Struct.Uint64(8)
}

func (s FilePart) SetDataHashToVerify(v uint64) {
	s.Struct.SetUint64(8, v)
}

// FilePart_List is a list of FilePart.
type FilePart_List struct{ capnp.List }

func (l FilePart_List) At(i int) FilePart {
	return FilePart{Struct: l.List.Struct(i)}
}
