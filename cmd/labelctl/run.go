package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etiqueta/backend/internal/application/autofill"
	"github.com/etiqueta/backend/internal/application/labeling"
	"github.com/etiqueta/backend/internal/infrastructure/employeeclient"
	"github.com/etiqueta/backend/internal/infrastructure/logger"
	"github.com/etiqueta/backend/internal/infrastructure/postal"
	"go.uber.org/zap"
)

const maxPDFBytes = 16 << 20

type options struct {
	server   string
	apiBase  string
	out      string
	timeout  time.Duration
	autofill bool
	logLevel string
	fields   map[string]*string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("labelctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{fields: make(map[string]*string)}
	fs.StringVar(&opts.server, "server", "http://localhost:3000", "Label server URL")
	fs.StringVar(&opts.apiBase, "api-base", "/api", "API base path of the label server")
	fs.StringVar(&opts.out, "out", labeling.DownloadFilename, "Output PDF path")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall request timeout")
	fs.BoolVar(&opts.autofill, "autofill", true, "Look up addresses and employees before generating")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	for _, name := range formFieldNames() {
		opts.fields[name] = fs.String(name, "", "Form field "+name)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	opts.server = strings.TrimRight(opts.server, "/")
	opts.apiBase = "/" + strings.Trim(opts.apiBase, "/")
	return opts, nil
}

// formFieldNames returns the fields the label endpoint reads, sorted
func formFieldNames() []string {
	var req labeling.GenerateLabelRequest
	names := make([]string, 0, 17)
	for name := range req.FormValues() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	values := make(map[string]string, len(opts.fields))
	for name, v := range opts.fields {
		values[name] = *v
	}
	form := autofill.NewMapForm(values)

	if opts.autofill {
		fillForm(ctx, form, opts, stderr, log)
	}

	labelID, pdf, err := generate(ctx, opts, form.Values())
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}

	fmt.Fprintf(stdout, "%s (%d bytes)", opts.out, len(pdf))
	if labelID != "" {
		fmt.Fprintf(stdout, " label %s", labelID)
	}
	fmt.Fprintln(stdout)
	return nil
}

// fillForm runs every applicable lookup concurrently against the label server
func fillForm(ctx context.Context, form *autofill.MapForm, opts *options, stderr io.Writer, log *zap.Logger) {
	api := opts.server + opts.apiBase
	tokens := autofill.NewRequestTokens()

	postalFlow := autofill.NewPostalFlow(
		form,
		stderrNotifier{w: stderr},
		postal.NewClient(postal.ClientConfig{URLTemplate: api + "/cep/%s/json"}, postal.WithLogger(log)),
		tokens,
		log,
	)
	employeeFlow := autofill.NewEmployeeFlow(
		form,
		employeeclient.New(employeeclient.Config{BaseURL: api}, employeeclient.WithLogger(log)),
		tokens,
		log,
	)

	var wg sync.WaitGroup
	for _, prefix := range []string{"dest", "remet"} {
		if form.Value(prefix+"_cep") == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := postalFlow.OnCommit(ctx, prefix)
			log.Debug("postal auto-fill", zap.String("party", prefix), zap.Stringer("outcome", outcome))
		}()
	}
	for _, role := range []string{autofill.RoleCourier, autofill.RoleCollector} {
		if form.Value(role+"_id") == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := employeeFlow.OnCommit(ctx, role)
			log.Debug("employee auto-fill", zap.String("role", role), zap.Stringer("outcome", outcome))
		}()
	}
	wg.Wait()
}

// generate posts the form and returns the label ID and PDF bytes
func generate(ctx context.Context, opts *options, values map[string]string) (string, []byte, error) {
	body := url.Values{}
	for name, v := range values {
		body.Set(name, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.server+"/gerar-etiqueta", strings.NewReader(body.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("label request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read label: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/pdf") {
		return "", nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return resp.Header.Get("X-Label-ID"), data, nil
}
