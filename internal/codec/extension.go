package codec

import (
	"reflect"
	"time"
	"unsafe"

	"github.com/golang-sql/civil"
	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(civil.DateTime{})
)

// timeExtension swaps the default RFC 3339 handling of time.Time and
// civil.DateTime for the stored layouts.
type timeExtension struct {
	jsoniter.DummyExtension
	loc *time.Location
}

func (e *timeExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	switch typ.Type1() {
	case timeType:
		return &timeCoder{loc: e.loc}
	case dateTimeType:
		return &dateTimeCoder{}
	}
	return nil
}

func (e *timeExtension) CreateDecoder(typ reflect2.Type) jsoniter.ValDecoder {
	switch typ.Type1() {
	case timeType:
		return &timeCoder{loc: e.loc}
	case dateTimeType:
		return &dateTimeCoder{}
	}
	return nil
}

type timeCoder struct {
	loc *time.Location
}

func (c *timeCoder) IsEmpty(ptr unsafe.Pointer) bool {
	return (*time.Time)(ptr).IsZero()
}

func (c *timeCoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString(FormatTime(*(*time.Time)(ptr)))
}

func (c *timeCoder) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	if iter.ReadNil() {
		*(*time.Time)(ptr) = time.Time{}
		return
	}
	t, err := ParseTime(iter.ReadString(), c.loc)
	if err != nil {
		iter.ReportError("decode time.Time", err.Error())
		return
	}
	*(*time.Time)(ptr) = t
}

type dateTimeCoder struct{}

func (c *dateTimeCoder) IsEmpty(ptr unsafe.Pointer) bool {
	return !(*civil.DateTime)(ptr).IsValid()
}

func (c *dateTimeCoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString(FormatDateTime(*(*civil.DateTime)(ptr)))
}

func (c *dateTimeCoder) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	if iter.ReadNil() {
		*(*civil.DateTime)(ptr) = civil.DateTime{}
		return
	}
	t, err := ParseTime(iter.ReadString(), time.UTC)
	if err != nil {
		iter.ReportError("decode civil.DateTime", err.Error())
		return
	}
	*(*civil.DateTime)(ptr) = civil.DateTimeOf(t)
}
