// Package pix builds Pix "copy and paste" payloads: the EMV-QRCPS
// merchant-presented text that wallet apps read from a QR code.
// See the BR Code manual published by the Banco Central do Brasil.
package pix

import "strings"

const (
	PayloadFormatIndicator  = "00"
	PointOfInitiationMethod = "01"
	MerchantAccountInfo     = "26"
	MerchantCategoryCode    = "52"
	TransactionCurrency     = "53"
	TransactionAmount       = "54"
	CountryCode             = "58"
	MerchantName            = "59"
	MerchantCity            = "60"
	AdditionalDataField     = "62"
	CRC16Tag                = "63"

	// subfields of MerchantAccountInfo and AdditionalDataField
	GUITag            = "00"
	KeyTag            = "01"
	ReferenceLabelTag = "05"
)

const (
	PayloadFormat = "01"
	// reusable code
	StaticInitiation = "11"
	// single use code
	DynamicInitiation = "12"
	GUI               = "br.gov.bcb.pix"
	CategoryCode      = "0000"
	// ISO 4217 code for BRL
	CurrencyBRL = "986"
	CountryBR   = "BR"

	MaxTxidLength = 25

	crcPrefix = CRC16Tag + "04"
)

// Payment holds the data encoded in a payload.
type Payment struct {
	// Pix key of the recipient: CPF, CNPJ, email, phone or random key.
	Key    string
	Name   string
	City   string
	Amount string
	// Txid is optional. Truncated to MaxTxidLength.
	Txid string
	// SingleUse marks the code as dynamic (point of initiation 12).
	SingleUse bool
}

// Encode builds the payload for a static (reusable) code.
func Encode(key, name, city, amount, identifier string) (string, error) {
	payment := Payment{
		Key:    key,
		Name:   name,
		City:   city,
		Amount: amount,
		Txid:   identifier,
	}
	return payment.Encode()
}

func (p Payment) validate() error {
	if len(p.Key) == 0 {
		return ErrMissingKey
	}
	if len(p.Name) == 0 {
		return ErrMissingName
	}
	if len(p.City) == 0 {
		return ErrMissingCity
	}
	if len(p.Amount) == 0 {
		return ErrMissingAmount
	}
	return nil
}

// Encode returns the full payload ending in the CRC16 field.
func (p Payment) Encode() (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	amount, err := FormatAmount(p.Amount)
	if err != nil {
		return "", err
	}

	txid := TruncateTxid(p.Txid)

	initiation := StaticInitiation
	if p.SingleUse {
		initiation = DynamicInitiation
	}

	accountInfo := []Field{
		{Tag: GUITag, Value: GUI},
		{Tag: KeyTag, Value: p.Key},
	}
	if len(txid) > 0 {
		accountInfo = append(accountInfo, Field{Tag: ReferenceLabelTag, Value: txid})
	}

	b := &payloadBuilder{}
	b.field(PayloadFormatIndicator, PayloadFormat)
	b.field(PointOfInitiationMethod, initiation)
	b.composite(MerchantAccountInfo, accountInfo)
	b.field(MerchantCategoryCode, CategoryCode)
	b.field(TransactionCurrency, CurrencyBRL)
	if amountIsPositive(amount) {
		b.field(TransactionAmount, amount)
	}
	b.field(CountryCode, CountryBR)
	b.field(MerchantName, p.Name)
	b.field(MerchantCity, p.City)
	if len(txid) > 0 {
		b.composite(AdditionalDataField, []Field{{Tag: ReferenceLabelTag, Value: txid}})
	}
	if b.err != nil {
		return "", b.err
	}

	// the checksum covers its own tag and length
	b.sb.WriteString(crcPrefix)
	b.sb.WriteString(CRC16(b.sb.String()))
	return b.sb.String(), nil
}

// TruncateTxid cuts txid to MaxTxidLength characters.
func TruncateTxid(txid string) string {
	if len(txid) > MaxTxidLength {
		return txid[:MaxTxidLength]
	}
	return txid
}

// VerifyChecksum reports whether payload ends with a CRC16 field
// matching the rest of the payload.
func VerifyChecksum(payload string) bool {
	if len(payload) < len(crcPrefix)+4 {
		return false
	}
	body := payload[:len(payload)-4]
	if !strings.HasSuffix(body, crcPrefix) {
		return false
	}
	return CRC16(body) == payload[len(payload)-4:]
}

// payloadBuilder accumulates encoded fields and keeps the first error.
type payloadBuilder struct {
	sb  strings.Builder
	err error
}

func (b *payloadBuilder) field(tag, value string) {
	if b.err != nil {
		return
	}
	encoded, err := EncodeField(tag, value)
	if err != nil {
		b.err = err
		return
	}
	b.sb.WriteString(encoded)
}

func (b *payloadBuilder) composite(tag string, subfields []Field) {
	if b.err != nil {
		return
	}
	encoded, err := EncodeCompositeField(tag, subfields)
	if err != nil {
		b.err = err
		return
	}
	b.sb.WriteString(encoded)
}
