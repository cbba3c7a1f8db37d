package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/elnosh/gopix/pix"
	"github.com/elnosh/gopix/pix/qrcode"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const (
	keyFlag        = "key"
	nameFlag       = "name"
	cityFlag       = "city"
	amountFlag     = "amount"
	txidFlag       = "txid"
	randomTxidFlag = "random-txid"
	singleUseFlag  = "single-use"
	outputFlag     = "output"
	dataURLFlag    = "dataurl"
	sizeFlag       = "size"
	marginFlag     = "margin"
	levelFlag      = "level"
)

// loadEnv loads $HOME/.gopix/.env, falling back to .env in the
// working directory.
func loadEnv() {
	envPath := ""
	if homedir, err := os.UserHomeDir(); err == nil {
		envPath = filepath.Join(homedir, ".gopix", ".env")
	}
	if _, err := os.Stat(envPath); len(envPath) == 0 || err != nil {
		wd, err := os.Getwd()
		if err != nil {
			return
		}
		envPath = filepath.Join(wd, ".env")
	}
	// missing file is fine, flags can carry everything
	godotenv.Load(envPath)
}

func main() {
	loadEnv()

	app := &cli.App{
		Name:  "pix",
		Usage: "generate Pix copy and paste codes and QR codes",
		Commands: []*cli.Command{
			encodeCmd,
			qrcodeCmd,
			crcCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var paymentFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    keyFlag,
		Usage:   "Pix key of the recipient",
		EnvVars: []string{"PIX_KEY"},
	},
	&cli.StringFlag{
		Name:    nameFlag,
		Usage:   "recipient name",
		EnvVars: []string{"PIX_NAME"},
	},
	&cli.StringFlag{
		Name:    cityFlag,
		Usage:   "recipient city",
		EnvVars: []string{"PIX_CITY"},
	},
	&cli.StringFlag{
		Name:  amountFlag,
		Usage: "amount to request, e.g. 10.50. use 0 to let the payer choose",
	},
	&cli.StringFlag{
		Name:  txidFlag,
		Usage: "transaction id (up to 25 characters)",
	},
	&cli.BoolFlag{
		Name:  randomTxidFlag,
		Usage: "generate a random transaction id",
	},
	&cli.BoolFlag{
		Name:  singleUseFlag,
		Usage: "mark the code as single use",
	},
}

func paymentFromFlags(ctx *cli.Context) (pix.Payment, error) {
	payment := pix.Payment{
		Key:       ctx.String(keyFlag),
		Name:      ctx.String(nameFlag),
		City:      ctx.String(cityFlag),
		Amount:    ctx.String(amountFlag),
		Txid:      ctx.String(txidFlag),
		SingleUse: ctx.Bool(singleUseFlag),
	}

	if ctx.Bool(randomTxidFlag) {
		if len(payment.Txid) > 0 {
			return pix.Payment{}, fmt.Errorf("--%v and --%v cannot be used together", txidFlag, randomTxidFlag)
		}
		payment.Txid = newTxid()
	}
	return payment, nil
}

// newTxid returns a random alphanumeric txid of the maximum length.
func newTxid() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return id[:pix.MaxTxidLength]
}

var encodeCmd = &cli.Command{
	Name:   "encode",
	Usage:  "print the Pix copy and paste code",
	Flags:  paymentFlags,
	Action: encode,
}

func encode(ctx *cli.Context) error {
	payment, err := paymentFromFlags(ctx)
	if err != nil {
		printErr(err)
	}

	payload, err := payment.Encode()
	if err != nil {
		printErr(err)
	}

	fmt.Println(payload)
	return nil
}

var qrcodeCmd = &cli.Command{
	Name:  "qrcode",
	Usage: "render the Pix code as a PNG QR code",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    outputFlag,
			Aliases: []string{"o"},
			Usage:   "write the PNG to this file",
		},
		&cli.BoolFlag{
			Name:  dataURLFlag,
			Usage: "print the image as a base64 data URL",
		},
		&cli.IntFlag{
			Name:  sizeFlag,
			Usage: "image width and height in pixels",
			Value: pix.DefaultRenderConfig().Size,
		},
		&cli.IntFlag{
			Name:  marginFlag,
			Usage: "quiet zone in modules",
			Value: pix.DefaultRenderConfig().Margin,
		},
		&cli.StringFlag{
			Name:  levelFlag,
			Usage: "error correction level: L, M, Q or H",
			Value: pix.DefaultRenderConfig().Level.String(),
		},
	}, paymentFlags...),
	Action: renderQRCode,
}

func renderQRCode(ctx *cli.Context) error {
	if !ctx.IsSet(outputFlag) && !ctx.Bool(dataURLFlag) {
		printErr(fmt.Errorf("specify --%v or --%v", outputFlag, dataURLFlag))
	}

	payment, err := paymentFromFlags(ctx)
	if err != nil {
		printErr(err)
	}

	config, err := renderConfig(ctx.Int(sizeFlag), ctx.Int(marginFlag), ctx.String(levelFlag))
	if err != nil {
		printErr(err)
	}

	payload, img, err := pix.EncodeImage(context.Background(), qrcode.NewBackend(), payment, config)
	if err != nil {
		printErr(err)
	}

	if ctx.IsSet(outputFlag) {
		if err := os.WriteFile(ctx.String(outputFlag), img, 0644); err != nil {
			printErr(fmt.Errorf("error writing image: %v", err))
		}
		fmt.Printf("QR code written to %v\n", ctx.String(outputFlag))
	}
	if ctx.Bool(dataURLFlag) {
		fmt.Println(pix.DataURL(img))
	}
	fmt.Printf("payload: %v\n", payload)
	return nil
}

func renderConfig(size, margin int, level string) (pix.RenderConfig, error) {
	recoveryLevel, err := pix.ParseRecoveryLevel(level)
	if err != nil {
		return pix.RenderConfig{}, err
	}
	if size <= 0 {
		return pix.RenderConfig{}, errors.New("size must be positive")
	}
	if margin < 0 {
		return pix.RenderConfig{}, errors.New("margin cannot be negative")
	}
	return pix.RenderConfig{Level: recoveryLevel, Margin: margin, Size: size}, nil
}

var crcCmd = &cli.Command{
	Name:      "crc",
	Usage:     "print the CRC16 of the given text",
	ArgsUsage: "[text]",
	Action:    crc,
}

func crc(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify the text to checksum"))
	}
	fmt.Println(pix.CRC16(args.First()))
	return nil
}

func printErr(msg error) {
	fmt.Println(msg.Error())
	os.Exit(1)
}
