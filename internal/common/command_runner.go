package common

import (
	"context"
	"fmt"
	"io"

	"resumescan/internal/errors"
	"resumescan/internal/types"
)

// CommandInput is the decoded input of a file-based command
type CommandInput struct {
	Resume         *types.ResumeRecord
	ResumePath     string
	JobDescription string
}

// ReportFunc runs an analysis operation over the decoded input
type ReportFunc[Output any] func(context.Context, CommandInput) Output

// CommandRunner wires file input, an analysis operation and formatted output
type CommandRunner struct {
	files  *FileProcessor
	output *OutputHandler
	logger *errors.Logger
}

// NewCommandRunner creates a runner that limits each input to maxSize bytes
func NewCommandRunner(logger *errors.Logger, maxSize int64) *CommandRunner {
	return &CommandRunner{
		files:  NewFileProcessor(logger, maxSize),
		output: NewOutputHandler(logger),
		logger: logger,
	}
}

// WithIO replaces stdin and stdout
func (r *CommandRunner) WithIO(stdin io.Reader, stdout io.Writer) *CommandRunner {
	r.files.WithStdin(stdin)
	r.output.WithWriter(stdout)
	return r
}

// LoadInput reads and decodes the resume and the optional job description
func (r *CommandRunner) LoadInput(resumePath, jobPath string) (CommandInput, error) {
	if resumePath == StdinPath && jobPath == StdinPath {
		return CommandInput{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume and job description cannot both be read from stdin", nil)
	}

	data, err := r.files.ReadInput(resumePath)
	if err != nil {
		return CommandInput{}, err
	}
	resume, err := DecodeResume(data, resumePath)
	if err != nil {
		return CommandInput{}, err
	}

	jd, err := r.files.ReadText(jobPath)
	if err != nil {
		return CommandInput{}, fmt.Errorf("failed to read job description: %w", err)
	}

	return CommandInput{Resume: resume, ResumePath: resumePath, JobDescription: jd}, nil
}

// RunReportCommand loads the input, runs the operation and writes its report
func RunReportCommand[Output any](
	ctx context.Context,
	runner *CommandRunner,
	cmdConfig CommandConfig,
	resumePath, jobPath string,
	operation ReportFunc[Output],
) error {
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, runner.output.GetSupportedFormats()); err != nil {
		return err
	}

	input, err := runner.LoadInput(resumePath, jobPath)
	if err != nil {
		return err
	}

	runner.logger.Debug("Running analysis",
		"resume", displayPath(resumePath),
		"has_job_description", input.JobDescription != "")

	result := operation(ctx, input)
	return runner.output.HandleOutput(result, cmdConfig)
}

func displayPath(path string) string {
	if path == "" || path == StdinPath {
		return "stdin"
	}
	return path
}
