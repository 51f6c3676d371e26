package walker

import (
	"bytes"
	"os"
	"path/filepath"
)

// binaryMagic lists byte sequences that identify common binary formats.
var binaryMagic = [][]byte{
	{0x89, 'P', 'N', 'G'},           // PNG
	{0xff, 0xd8, 0xff},              // JPEG
	{'G', 'I', 'F', '8'},            // GIF
	{'P', 'K', 0x03, 0x04},          // ZIP / DOCX / XLSX / JAR
	{'P', 'K', 0x05, 0x06},          // ZIP empty
	{0x7f, 'E', 'L', 'F'},           // ELF binary
	{0xfe, 0xed, 0xfa},              // Mach-O
	{0xcf, 0xfa, 0xed},              // Mach-O (reverse)
	{0xca, 0xfe, 0xba},              // Java class / Mach-O fat
	{0x00, 0x00, 0x01, 0x00},        // ICO
	{'%', 'P', 'D', 'F'},            // PDF
	{0x1f, 0x8b},                    // gzip
	{'B', 'Z'},                      // bzip2
	{0xfd, '7', 'z', 'X', 'Z'},      // xz
	{'R', 'a', 'r', '!'},            // RAR
	{0x00, 'a', 's', 'm'},           // WASM
}

const magicSniffBytes = 16

// IsBinaryFile classifies a file as binary or text: known text extensions
// short-circuit to text, everything else is sniffed via magic bytes and a
// NUL-byte check on the first 16 bytes. An empty file is text. A file that
// cannot be read is treated as binary (skip, don't crash the walk).
func IsBinaryFile(path string) (bool, error) {
	ext := filepath.Ext(path)
	name := filepath.Base(path)
	if IsTextExtension(ext, name) {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return true, nil
	}
	defer f.Close()

	buf := make([]byte, magicSniffBytes)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty file (io.EOF with n==0) is text.
		return false, nil
	}
	header := buf[:n]
	if len(header) == 0 {
		return false, nil
	}

	for _, magic := range binaryMagic {
		if bytes.HasPrefix(header, magic) {
			return true, nil
		}
	}

	return bytes.IndexByte(header, 0x00) >= 0, nil
}

// EstimateChunks estimates how many chunks a file of fileSize bytes would
// produce at the given token target, assuming ~4 characters per token.
func EstimateChunks(fileSize int64, tokenTarget int) int {
	charsPerChunk := int64(tokenTarget) * 4
	if charsPerChunk <= 0 {
		charsPerChunk = 1
	}
	estimate := fileSize / charsPerChunk
	if estimate < 1 {
		return 1
	}
	return int(estimate)
}
