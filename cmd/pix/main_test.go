package main

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elnosh/gopix/pix"
	"github.com/urfave/cli/v2"
)

const expectedPayload = "00020101021126460014br.gov.bcb.pix0111123456789000509PEDIDO123520400005303986540510.005802BR5913FULANO DE TAL6009SAO PAULO62130509PEDIDO12363040C65"

var recipientArgs = []string{"--key", "12345678900", "--name", "FULANO DE TAL", "--city", "SAO PAULO"}

// runApp runs the pix app with args and returns what it printed.
func runApp(t *testing.T, args ...string) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	output := make(chan []byte)
	go func() {
		out, _ := io.ReadAll(r)
		output <- out
	}()

	app := &cli.App{
		Name:     "pix",
		Commands: []*cli.Command{encodeCmd, qrcodeCmd, crcCmd},
	}
	runErr := app.Run(append([]string{"pix"}, args...))
	w.Close()
	out := <-output

	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}
	return string(out)
}

// flagsPayment parses args with the payment flags and returns the result
// of paymentFromFlags.
func flagsPayment(t *testing.T, args ...string) (pix.Payment, error) {
	t.Helper()

	var payment pix.Payment
	var paymentErr error
	app := &cli.App{
		Name: "pix",
		Commands: []*cli.Command{{
			Name:  "payment",
			Flags: paymentFlags,
			Action: func(ctx *cli.Context) error {
				payment, paymentErr = paymentFromFlags(ctx)
				return nil
			},
		}},
	}
	if err := app.Run(append([]string{"pix", "payment"}, args...)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return payment, paymentErr
}

func clearPaymentEnv(t *testing.T) {
	for _, env := range []string{"PIX_KEY", "PIX_NAME", "PIX_CITY"} {
		t.Setenv(env, "")
	}
}

func TestEncodeCommand(t *testing.T) {
	clearPaymentEnv(t)

	args := append([]string{"encode"}, recipientArgs...)
	args = append(args, "--amount", "10.00", "--txid", "PEDIDO123")
	out := runApp(t, args...)
	if out != expectedPayload+"\n" {
		t.Errorf("expected '%v' but got '%v' instead", expectedPayload, out)
	}
}

func TestCRCCommand(t *testing.T) {
	out := runApp(t, "crc", "123456789")
	if out != "29B1\n" {
		t.Errorf("expected '29B1' but got '%v' instead", out)
	}
}

func TestQRCodeCommand(t *testing.T) {
	clearPaymentEnv(t)

	output := filepath.Join(t.TempDir(), "pix.png")
	args := append([]string{"qrcode", "--output", output, "--size", "300"}, recipientArgs...)
	args = append(args, "--amount", "10.00", "--txid", "PEDIDO123")
	out := runApp(t, args...)
	if !strings.Contains(out, "payload: "+expectedPayload) {
		t.Errorf("expected payload in output but got '%v'", out)
	}

	imgBytes, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("error reading image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		t.Fatalf("error decoding png: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 300 || bounds.Dy() != 300 {
		t.Errorf("expected 300x300 image but got %vx%v", bounds.Dx(), bounds.Dy())
	}

	args = append([]string{"qrcode", "--dataurl"}, recipientArgs...)
	out = runApp(t, append(args, "--amount", "10.00", "--txid", "PEDIDO123")...)
	if !strings.Contains(out, "data:image/png;base64,") {
		t.Errorf("expected data URL in output but got '%v'", out)
	}
}

func TestPaymentFromFlags(t *testing.T) {
	clearPaymentEnv(t)

	// no amount flag: the payment reports it missing
	payment, err := flagsPayment(t, recipientArgs...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := payment.Encode(); !errors.Is(err, pix.ErrMissingAmount) {
		t.Errorf("expected '%v' but got '%v' instead", pix.ErrMissingAmount, err)
	}

	// amount 0 is an open amount code
	payment, err = flagsPayment(t, append(recipientArgs, "--amount", "0")...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := payment.Encode(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	payment, err = flagsPayment(t, append(recipientArgs, "--amount", "1", "--random-txid", "--single-use")...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payment.Txid) != pix.MaxTxidLength || !payment.SingleUse {
		t.Errorf("unexpected payment %+v", payment)
	}

	if _, err := flagsPayment(t, "--txid", "ID", "--random-txid"); err == nil {
		t.Errorf("expected error for --txid with --random-txid")
	}
}

func TestNewTxid(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		txid := newTxid()
		if len(txid) != pix.MaxTxidLength {
			t.Fatalf("expected txid of length %v but got '%v'", pix.MaxTxidLength, txid)
		}
		for _, c := range txid {
			if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
				t.Fatalf("unexpected character '%c' in txid '%v'", c, txid)
			}
		}
		if seen[txid] {
			t.Fatalf("duplicate txid '%v'", txid)
		}
		seen[txid] = true
	}
}

func TestRenderConfig(t *testing.T) {
	config, err := renderConfig(300, 2, "h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := pix.RenderConfig{Level: pix.RecoveryHigh, Margin: 2, Size: 300}
	if config != expected {
		t.Errorf("expected '%v' but got '%v' instead", expected, config)
	}

	invalid := []struct {
		size   int
		margin int
		level  string
	}{
		{size: 0, margin: 1, level: "M"},
		{size: 250, margin: -1, level: "M"},
		{size: 250, margin: 1, level: "Z"},
	}
	for _, test := range invalid {
		if _, err := renderConfig(test.size, test.margin, test.level); err == nil {
			t.Errorf("expected error for %+v", test)
		}
	}
}
