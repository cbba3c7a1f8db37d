package pix

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKey    = errors.New("pix key is required")
	ErrMissingName   = errors.New("recipient name is required")
	ErrMissingCity   = errors.New("recipient city is required")
	ErrMissingAmount = errors.New("amount is required")
	ErrInvalidAmount = errors.New("invalid amount. must be a non-negative number")

	ErrValueTooLong     = errors.New("value exceeds 99 characters")
	ErrInvalidTag       = errors.New("tag must be two digits")
	ErrInvalidCharacter = errors.New("value contains non-ASCII or control characters")

	// ErrRender is wrapped around any failure from a Renderer so callers
	// can tell backend failures apart from bad input.
	ErrRender = errors.New("error rendering QR code")
	// ErrInvalidRenderConfig is wrapped by renderers that reject the
	// requested image options. It is an input error even inside ErrRender.
	ErrInvalidRenderConfig = errors.New("invalid QR code options")
)

// FieldError reports the tag of the field that could not be encoded.
type FieldError struct {
	Tag string
	Err error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", fe.Tag, fe.Err)
}

func (fe *FieldError) Unwrap() error {
	return fe.Err
}

type ErrCode int

const (
	StandardErrCode ErrCode = 10000

	MissingKeyErrCode    ErrCode = 11001
	MissingNameErrCode   ErrCode = 11002
	MissingCityErrCode   ErrCode = 11003
	MissingAmountErrCode ErrCode = 11004
	InvalidAmountErrCode ErrCode = 11005

	ValueTooLongErrCode     ErrCode = 12001
	InvalidTagErrCode       ErrCode = 12002
	InvalidCharacterErrCode ErrCode = 12003

	RenderErrCode              ErrCode = 20001
	InvalidRenderConfigErrCode ErrCode = 20002
)

var errCodes = []struct {
	err  error
	code ErrCode
}{
	// render errors first: they may also wrap anything else
	{ErrInvalidRenderConfig, InvalidRenderConfigErrCode},
	{ErrRender, RenderErrCode},
	{ErrMissingKey, MissingKeyErrCode},
	{ErrMissingName, MissingNameErrCode},
	{ErrMissingCity, MissingCityErrCode},
	{ErrMissingAmount, MissingAmountErrCode},
	{ErrInvalidAmount, InvalidAmountErrCode},
	{ErrValueTooLong, ValueTooLongErrCode},
	{ErrInvalidTag, InvalidTagErrCode},
	{ErrInvalidCharacter, InvalidCharacterErrCode},
}

// Code returns the stable numeric code for err, or StandardErrCode
// when err is not one of the package errors.
func Code(err error) ErrCode {
	for _, ec := range errCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return StandardErrCode
}

// IsInputError reports whether err was caused by the payment data
// rather than by the rendering backend or anything else.
func IsInputError(err error) bool {
	code := Code(err)
	return code != StandardErrCode && code != RenderErrCode
}
