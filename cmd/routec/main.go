package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/routec/routec/internal/exitcode"
	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/pkg/api"
)

const helpText = `
Usage:
  routec [options] file

Options:
  --target=...             Build target (server or client, default client)
  --fields                 List the recognized fields instead of transforming
  --assert-never-imported  Fail if the canonical factory is imported at all
  --factory=name:source    Override the canonical factory (default
                           defineRoute:routing-lib)
  --sourcemap              Emit a source map next to the output file
  --outfile=...            The output file (defaults to stdout)
  --color=...              Force use of color terminal escapes (true or false)
  --help                   Print this message and exit

Examples:
  # Strip server-only fields for the client build
  routec --target=client --sourcemap --outfile=out.tsx app/routes/user.tsx

  # Print the fields a route module declares
  routec --fields app/routes/user.tsx

  # Guard a shared module against importing the factory
  routec --assert-never-imported app/utils.ts
`

func main() {
	exitcode.Exit(run(os.Args[1:]))
}

func run(osArgs []string) error {
	target := api.TargetClient
	listFields := false
	assertNeverImported := false
	factory := api.Factory{}
	sourcemap := false
	outfile := ""
	input := ""

	for _, arg := range osArgs {
		switch {
		case arg == "--help" || arg == "-h":
			fmt.Fprintf(os.Stderr, "%s\n", helpText)
			return nil

		case arg == "--fields":
			listFields = true

		case arg == "--assert-never-imported":
			assertNeverImported = true

		case arg == "--sourcemap":
			sourcemap = true

		case strings.HasPrefix(arg, "--target="):
			switch value := arg[len("--target="):]; value {
			case "server":
				target = api.TargetServer
			case "client":
				target = api.TargetClient
			default:
				return fmt.Errorf("invalid target: %q (valid: server, client)", value)
			}

		case strings.HasPrefix(arg, "--factory="):
			value := arg[len("--factory="):]
			colon := strings.IndexByte(value, ':')
			if colon <= 0 || colon == len(value)-1 {
				return fmt.Errorf("invalid factory: %q (expected name:source)", value)
			}
			factory = api.Factory{Name: value[:colon], Source: value[colon+1:]}

		case strings.HasPrefix(arg, "--outfile="):
			outfile = arg[len("--outfile="):]

		case strings.HasPrefix(arg, "--color="):
			// Handled by logger.PrintMessageToStderr

		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("invalid flag: %s", arg)

		default:
			if input != "" {
				return fmt.Errorf("only one input file is allowed, got %q and %q", input, arg)
			}
			input = arg
		}
	}

	if input == "" {
		fmt.Fprintf(os.Stderr, "%s\n", helpText)
		return exitcode.Set(fmt.Errorf("missing input file"), 2)
	}

	contents, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	sourceText := string(contents)

	switch {
	case listFields:
		result := api.ListFields(sourceText, api.FieldsOptions{
			ModuleID: input,
			Factory:  factory,
		})
		if err := reportErrors(osArgs, result.Errors); err != nil {
			return err
		}
		for _, field := range result.Fields {
			fmt.Println(field)
		}
		return nil

	case assertNeverImported:
		result := api.AssertNeverImported(sourceText, api.GuardOptions{
			ModuleID: input,
			Factory:  factory,
		})
		return reportErrors(osArgs, result.Errors)

	default:
		result := api.Transform(sourceText, api.TransformOptions{
			ModuleID:  input,
			Target:    target,
			Factory:   factory,
			Sourcemap: sourcemap,
		})
		if err := reportErrors(osArgs, result.Errors); err != nil {
			return err
		}
		if outfile == "" {
			os.Stdout.Write(result.Code)
			return nil
		}
		if err := os.WriteFile(outfile, result.Code, 0644); err != nil {
			return err
		}
		if result.Map != nil {
			if err := os.WriteFile(outfile+".map", result.Map, 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

func reportErrors(osArgs []string, messages []api.Message) error {
	if len(messages) == 0 {
		return nil
	}
	for _, message := range messages {
		logger.PrintMessageToStderr(osArgs, logger.Msg{
			Kind:      logger.Error,
			ErrorKind: convertErrorKind(message.Kind),
			Text:      message.Text,
			Location:  convertLocation(message.Location),
		})
	}
	if len(messages) == 1 {
		return fmt.Errorf("1 error")
	}
	return fmt.Errorf("%d errors", len(messages))
}

func convertErrorKind(kind api.ErrorKind) logger.ErrorKind {
	switch kind {
	case api.KindSyntax:
		return logger.KindSyntax
	case api.KindSchema:
		return logger.KindSchema
	case api.KindMisuse:
		return logger.KindMisuse
	case api.KindImportPresence:
		return logger.KindImportPresence
	}
	return logger.KindNone
}

func convertLocation(location *api.Location) *logger.MsgLocation {
	if location == nil {
		return nil
	}
	return &logger.MsgLocation{
		File:     location.File,
		Line:     location.Line,
		Column:   location.Column,
		Length:   location.Length,
		LineText: location.LineText,
	}
}
