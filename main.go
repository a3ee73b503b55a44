package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

const (
	// size of the chunks a message is split into
	defaultChunkSize = 0x100000
	defaultImage     = "image.png"
)

var errUsage = errors.New("usage error")

func main() {
	err := run(os.Args[1:], os.Stdout)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		usage(os.Stderr)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// run parses the command line and executes the selected command
func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	switch args[0] {
	case "encode":
		opts := encodeOptions{}
		fs := flag.NewFlagSet("encode", flag.ContinueOnError)
		fs.StringVar(&opts.Image, "image", defaultImage, "The path of the png file.")
		fs.StringVar(&opts.Type, "type", "", "The chunk type to store the message in.")
		fs.StringVar(&opts.Message, "message", "", "The message to store.")
		fs.StringVar(&opts.Input, "in", "", "A file with the data to store instead of -message.")
		fs.StringVar(&opts.Output, "out", "", "The output filename for the image. Defaults to -image.")
		fs.IntVar(&opts.ChunkSize, "chunk-size", defaultChunkSize, "The maximum number of bytes per chunk.")
		fs.BoolVar(&opts.Encrypt, "encrypt", false, "Encrypt the data with a password.")
		fs.BoolVar(&opts.Quiet, "quiet", false, "Don't log progress.")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		setQuiet(opts.Quiet)
		return encodeMessage(opts, stdout)
	case "decode":
		opts := decodeOptions{}
		fs := flag.NewFlagSet("decode", flag.ContinueOnError)
		fs.StringVar(&opts.Image, "image", defaultImage, "The path of the png file.")
		fs.StringVar(&opts.Type, "type", "", "The chunk type the message is stored in.")
		fs.StringVar(&opts.Output, "out", "", "Write the data to this file instead of printing it.")
		fs.BoolVar(&opts.All, "all", false, "Join the data of every chunk of the type instead of reading the first one.")
		fs.BoolVar(&opts.Decrypt, "decrypt", false, "Decrypt the data with a password.")
		fs.BoolVar(&opts.Quiet, "quiet", false, "Don't log progress.")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		setQuiet(opts.Quiet)
		return decodeMessage(opts, stdout)
	case "remove":
		opts := removeOptions{}
		fs := flag.NewFlagSet("remove", flag.ContinueOnError)
		fs.StringVar(&opts.Image, "image", defaultImage, "The path of the png file.")
		fs.StringVar(&opts.Type, "type", "", "The chunk type to remove.")
		fs.StringVar(&opts.Output, "out", "", "The output filename for the image. Defaults to -image.")
		fs.BoolVar(&opts.All, "all", false, "Remove every chunk of the type instead of the first one.")
		fs.BoolVar(&opts.Quiet, "quiet", false, "Don't log progress.")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		setQuiet(opts.Quiet)
		return removeMessage(opts, stdout)
	case "print":
		opts := printOptions{}
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.StringVar(&opts.Image, "image", defaultImage, "The path of the png file.")
		fs.BoolVar(&opts.Verbose, "verbose", false, "Show the chunk type flags and checksums.")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		setQuiet(true)
		return printChunks(opts, stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: pngmsg <command> [flags]

Commands:
  encode   store a message in a chunk of the png
  decode   print the message stored in a chunk type
  remove   delete a chunk type from the png
  print    list the chunks of the png

Run pngmsg <command> -h for the flags of a command.
`)
}

func setQuiet(quiet bool) {
	if quiet {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
}
