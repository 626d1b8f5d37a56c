package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"trackerhub/internal/adapters/batchfile"
	"trackerhub/internal/platform/logger"
	imports "trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

// Exit codes
const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

// output is what the command prints on success or partial success
type output struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, imp imports.Importer) int {
	log := logger.Named("import-cli")

	fs := flag.NewFlagSet("trackerhub-import", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		fEnv       = fs.String("env", "", "environment: production | staging | development")
		fFile      = fs.String("file", "-", "batch file: object, array or ndjson, optionally gzipped; - for stdin")
		fNLU       = fs.Bool("nlu", false, "back-fill activity from parse data; overrides processNlu in the file")
		fWatermark = fs.Bool("watermark", false, "print the latest imported event of env and exit")
	)
	if err := fs.Parse(args); err != nil {
		return exitFailed
	}
	nluSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "nlu" {
			nluSet = true
		}
	})

	env, err := imports.ParseEnv(*fEnv)
	if err != nil {
		log.Error().Str("env", *fEnv).Msg(imports.MsgInvalidEnv)
		return exitFailed
	}
	ctx = logger.WithEnv(ctx, string(env))

	if *fWatermark {
		ts, err := imp.Watermark(ctx, env)
		if err != nil {
			log.Error().Err(err).Msg("watermark failed")
			return exitFailed
		}
		return emit(stdout, imports.WatermarkBody{Timestamp: ts}, exitOK)
	}

	rc, err := batchfile.Open(*fFile, stdin)
	if err != nil {
		log.Error().Err(err).Str("file", *fFile).Msg("open batch")
		return exitFailed
	}
	b, err := batchfile.Read(rc)
	_ = rc.Close()
	if err != nil {
		log.Error().Err(err).Str("file", *fFile).Msg("read batch")
		return exitFailed
	}
	log.Info().
		Str("file", *fFile).
		Str("format", b.Format).
		Bool("gzip", b.Gzip).
		Int64("bytes", b.Bytes).
		Int("conversations", len(b.Conversations)).
		Msg("batch loaded")

	in := imports.ImportInput{Env: env, Conversations: b.Conversations}
	if b.ProcessNLU != nil {
		in.ProcessNLU = *b.ProcessNLU
	}
	if nluSet {
		in.ProcessNLU = *fNLU
	}

	rep, err := imp.Import(ctx, in)
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return exitFailed
	}
	code := exitOK
	switch rep.Status {
	case imports.StatusPartial:
		code = exitPartial
	case imports.StatusFailed:
		code = exitFailed
	}
	return emit(stdout, output{Status: rep.Status.HTTPStatus(), Body: rep.Body()}, code)
}

func emit(w io.Writer, v any, code int) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return exitFailed
	}
	_, _ = fmt.Fprintln(w, string(b))
	return code
}
