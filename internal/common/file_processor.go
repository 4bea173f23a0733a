package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumescan/internal/errors"
	"resumescan/internal/utils"
)

// StdinPath is the input path that selects standard input
const StdinPath = "-"

// FileProcessor handles common file operations
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
	stdin   io.Reader
}

// NewFileProcessor creates a new file processor instance. maxSize caps the
// bytes read from any single input; zero means unlimited.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxSize: maxSize, stdin: os.Stdin}
}

// WithStdin replaces the reader used for StdinPath
func (fp *FileProcessor) WithStdin(r io.Reader) *FileProcessor {
	fp.stdin = r
	return fp
}

// ReadInput reads a file, or standard input when path is empty or "-"
func (fp *FileProcessor) ReadInput(path string) ([]byte, error) {
	if path == "" || path == StdinPath {
		return fp.readLimited(fp.stdin, "stdin")
	}

	if err := utils.ValidateInputFile(path); err != nil {
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", path), err)
	}
	return fp.ReadFile(path)
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	return fp.readLimited(file, filename)
}

func (fp *FileProcessor) readLimited(r io.Reader, name string) ([]byte, error) {
	if r == nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("No input available for %s", name), nil)
	}
	if fp.maxSize > 0 {
		r = io.LimitReader(r, fp.maxSize+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read content: %s", name), err)
	}
	if fp.maxSize > 0 && int64(len(content)) > fp.maxSize {
		return nil, errors.NewValidationError(errors.ErrCodeRequestTooLarge,
			fmt.Sprintf("Input %s exceeds the %s limit", name, utils.FormatFileSize(fp.maxSize)), nil)
	}
	return content, nil
}

// ReadText reads an optional plain text input such as a job description.
// An empty path yields an empty string.
func (fp *FileProcessor) ReadText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path != StdinPath && !utils.IsTextFile(path) {
		fp.logger.Warn("File may not be a text file", "filename", path)
	}
	content, err := fp.ReadInput(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
