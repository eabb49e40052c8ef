package cache

import "errors"

var (
	// ErrNilStore is returned when a Facade is built without a Store.
	ErrNilStore = errors.New("cacheable: store is nil")

	// ErrUnknownDriver is returned by NewStore for an unsupported driver name.
	ErrUnknownDriver = errors.New("cacheable: unknown store driver")

	// ErrUnknownCodec is returned by NewCodec for an unsupported codec name.
	ErrUnknownCodec = errors.New("cacheable: unknown codec")

	// ErrEncode wraps codec failures while storing a value.
	ErrEncode = errors.New("cacheable: encode value")

	// ErrDecode wraps codec failures while reading a value back.
	ErrDecode = errors.New("cacheable: decode value")
)
