package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"image-steganography-backend/crypto"
	"image-steganography-backend/imaging"
	"image-steganography-backend/stego"
)

var errUsage = errors.New("encode or decode subcommand is required")

func main() {
	log := logrus.New()
	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer, log logrus.FieldLogger) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "encode":
		encodeCommand := flag.NewFlagSet("encode", flag.ContinueOnError)
		input := encodeCommand.String("input", "", "cover image (PNG, JPEG, GIF or BMP) (required)")
		output := encodeCommand.String("output", "", "destination PNG for the encoded image (required)")
		message := encodeCommand.String("message", "", "text to hide (required)")
		password := encodeCommand.String("password", "", "password used to sign the message (required)")
		if err := encodeCommand.Parse(args[1:]); err != nil {
			return err
		}
		if *input == "" || *output == "" || *message == "" || *password == "" {
			encodeCommand.PrintDefaults()
			return errors.New("missing required flags")
		}
		return encode(*input, *output, *message, *password, log)
	case "decode":
		decodeCommand := flag.NewFlagSet("decode", flag.ContinueOnError)
		input := decodeCommand.String("input", "", "image the message is thought to be in (required)")
		password := decodeCommand.String("password", "", "password the message was hidden with (required)")
		if err := decodeCommand.Parse(args[1:]); err != nil {
			return err
		}
		if *input == "" || *password == "" {
			decodeCommand.PrintDefaults()
			return errors.New("missing required flags")
		}
		return decode(*input, *password, stdout)
	default:
		return errUsage
	}
}

func encode(input, output, message, password string, log logrus.FieldLogger) error {
	if err := crypto.ValidatePassword(password, crypto.MinPasswordLength); err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	decoder := imaging.NewImageDecoder()
	pixels, metadata, err := decoder.Decode(data)
	if err != nil {
		return err
	}

	encoded, err := stego.Encode(pixels, message, password)
	if err != nil {
		return err
	}

	err = writeOutput(output, func(w io.Writer) error {
		return decoder.EncodePNG(w, encoded, metadata)
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"output": output,
		"bits":   stego.RequiredBits(message, password),
		"pixels": metadata.PixelCount(),
		"psnr":   imaging.CalculatePSNR(pixels, encoded),
	}).Info("message hidden")
	return nil
}

// writeOutput creates path and fills it with write, removing the partial file
// when writing or closing fails.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	writer, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()

	if err = write(writer); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func decode(input, password string, stdout io.Writer) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	pixels, _, err := imaging.NewImageDecoder().Decode(data)
	if err != nil {
		return err
	}

	message, ok := stego.Decode(pixels, password)
	if !ok {
		return errors.New("wrong password or no hidden message found in this image")
	}

	_, err = fmt.Fprintln(stdout, message)
	return err
}
