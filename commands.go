package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"github.com/cheggaaa/pb/v3"

	"github.com/trivernis/pngmsg/pngdata"
)

type encodeOptions struct {
	Image     string
	Type      string
	Message   string
	Input     string
	Output    string
	ChunkSize int
	Encrypt   bool
	Quiet     bool
}

type decodeOptions struct {
	Image   string
	Type    string
	Output  string
	All     bool
	Decrypt bool
	Quiet   bool
}

type removeOptions struct {
	Image  string
	Type   string
	Output string
	All    bool
	Quiet  bool
}

type printOptions struct {
	Image   string
	Verbose bool
}

// stores the message inside the png, split into chunks of at most ChunkSize bytes
func encodeMessage(opts encodeOptions, stdout io.Writer) error {
	chunkType, err := pngdata.ParseChunkType(opts.Type)
	if err != nil {
		return err
	}
	if opts.ChunkSize < 1 || opts.ChunkSize > pngdata.MaxDataLength {
		return fmt.Errorf("%w: chunk size must be between 1 and %d", errUsage, pngdata.MaxDataLength)
	}
	if opts.Message != "" && opts.Input != "" {
		return fmt.Errorf("%w: -message and -in are mutually exclusive", errUsage)
	}

	png, err := loadImage(opts.Image)
	if err != nil {
		return err
	}

	data := []byte(opts.Message)
	if opts.Input != "" {
		log.Println("Reading input file...")
		if data, err = os.ReadFile(opts.Input); err != nil {
			return err
		}
	}
	if opts.Encrypt {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		log.Println("Encrypting data...")
		if data, err = encryptData(password, data); err != nil {
			return err
		}
	}

	chunkCount := (len(data) + opts.ChunkSize - 1) / opts.ChunkSize
	if chunkCount == 0 {
		chunkCount = 1
	}
	log.Printf("Creating %d chunks to store the data...\n", chunkCount)
	bar := startBar(chunkCount, opts.Quiet)
	for i := 0; i < chunkCount; i++ {
		start := i * opts.ChunkSize
		end := start + opts.ChunkSize
		if end > len(data) {
			end = len(data)
		}
		png.AppendChunk(pngdata.NewChunk(chunkType, data[start:end]))
		bar.Increment()
	}
	bar.Finish()

	output := opts.Output
	if output == "" {
		output = opts.Image
	}
	log.Println("Writing output file...")
	if err := png.Save(output); err != nil {
		return err
	}
	writeInfo(stdout, "Stored %d bytes in %d %s chunks of %s", len(data), chunkCount, chunkType, output)
	if chunkCount > 1 || opts.Encrypt {
		writeInfo(stdout, "Pass -all to decode and remove to read or delete the whole message")
	}
	return nil
}

// reads the message stored in the first chunk of a type, or in all of them with All
func decodeMessage(opts decodeOptions, stdout io.Writer) error {
	chunkType, err := pngdata.ParseChunkType(opts.Type)
	if err != nil {
		return err
	}
	png, err := loadImage(opts.Image)
	if err != nil {
		return err
	}

	var chunks []pngdata.ChunkData
	if opts.All {
		chunks = png.ChunksByType(chunkType.String())
	} else if chunk := png.ChunkByType(chunkType.String()); chunk != nil {
		chunks = append(chunks, *chunk)
	}
	if len(chunks) == 0 {
		writeInfo(stdout, "No chunk found with type %s", chunkType)
		return nil
	}
	log.Printf("Reading %d chunks...", len(chunks))
	var data []byte
	bar := startBar(len(chunks), opts.Quiet)
	for _, c := range chunks {
		data = append(data, c.Data()...)
		bar.Increment()
	}
	bar.Finish()

	if opts.Decrypt {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		log.Println("Decrypting data...")
		if data, err = decryptData(password, data); err != nil {
			return err
		}
	}

	if opts.Output != "" {
		log.Println("Writing output file...")
		return os.WriteFile(opts.Output, data, 0o644)
	}
	if len(chunks) == 1 && !opts.Decrypt {
		text, err := chunks[0].DataAsString()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, text)
		return nil
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: use -out to write binary data to a file", pngdata.ErrInvalidUTF8)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

// removes the first (or every) chunk of a type and prints what it held
func removeMessage(opts removeOptions, stdout io.Writer) error {
	chunkType, err := pngdata.ParseChunkType(opts.Type)
	if err != nil {
		return err
	}
	png, err := loadImage(opts.Image)
	if err != nil {
		return err
	}

	var removed []pngdata.ChunkData
	if opts.All {
		removed, err = png.DeleteChunks(chunkType.String())
	} else {
		var chunk pngdata.ChunkData
		chunk, err = png.DeleteChunk(chunkType.String())
		removed = append(removed, chunk)
	}
	if err != nil {
		return err
	}

	for _, c := range removed {
		if text, err := c.DataAsString(); err == nil {
			fmt.Fprintln(stdout, text)
		} else {
			writeInfo(stdout, "Removed %d bytes of binary data", c.Length())
		}
	}

	output := opts.Output
	if output == "" {
		output = opts.Image
	}
	log.Println("Writing output file...")
	if err := png.Save(output); err != nil {
		return err
	}
	writeInfo(stdout, "Removed %d %s chunks from %s", len(removed), chunkType, output)
	return nil
}

func printChunks(opts printOptions, stdout io.Writer) error {
	png, err := loadImage(opts.Image)
	if err != nil {
		return err
	}
	writeChunkList(stdout, opts.Image, png, opts.Verbose)
	return nil
}

func loadImage(path string) (*pngdata.PngData, error) {
	log.Println("Reading image file...")
	return pngdata.LoadPng(path)
}

// startBar starts a progress bar that stays silent in quiet mode
func startBar(count int, quiet bool) *pb.ProgressBar {
	bar := pb.New(count)
	if quiet {
		bar.SetWriter(io.Discard)
	}
	return bar.Start()
}
