// Package cli implements leadctl, a command-line front end for the
// submission client. Settings come from flags, LEADCTL_* environment
// variables or an optional config file, in that order of precedence.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tbourn/go-lead-backend/internal/submit"
)

// Setting keys; flags and LEADCTL_* variables share these names.
const (
	keyBaseURL      = "base-url"
	keyAPIBase      = "api-base"
	keyEndpointPath = "endpoint-path"
	keyAnonKey      = "anon-key"
	keyToken        = "token"
	keyDirect       = "direct"
	keyFollowUp     = "follow-up"
	keyContactEmail = "contact-email"
	keyContactPhone = "contact-phone"
	keyReadyTries   = "ready-tries"
	keyDebug        = "debug"
)

// NewRootCommand returns the leadctl command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "leadctl",
		Short:         "Submit contact-form leads from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v.SetEnvPrefix("LEADCTL")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			return v.BindPFlags(cmd.Flags())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.String(keyBaseURL, "http://localhost:8080", "lead service root URL")
	pf.String(keyAPIBase, "/api/v1", "API base path, used for the notify follow-up")
	pf.String(keyEndpointPath, submit.FunctionsPath, "ingestion endpoint path")
	pf.String(keyAnonKey, "", "table API key; empty skips the direct insert")
	pf.String(keyToken, "", "bearer token for the ingestion endpoint (defaults to the anon key)")
	pf.Bool(keyDirect, true, "try the direct table insert first")
	pf.Bool(keyFollowUp, true, "request the notification email after a direct insert")
	pf.String(keyContactEmail, "info@lambagentic.com", "contact email shown when submission fails")
	pf.String(keyContactPhone, "", "contact phone shown when submission fails")
	pf.Uint(keyReadyTries, 20, "readiness polls before the direct insert is skipped")
	pf.Bool(keyDebug, false, "log every attempt to stderr")

	root.AddCommand(newSubmitCommand(v))
	return root
}

func newSubmitCommand(v *viper.Viper) *cobra.Command {
	var form submit.Form

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one lead and print the result banner",
		Example: `  leadctl submit --name "Ada Lovelace" --email ada@example.com \
    --message "I'd like to automate our invoicing." --service automation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.WarnLevel
			if v.GetBool(keyDebug) {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
				Level(level).With().Timestamp().Logger()
			ctx := logger.WithContext(cmd.Context())

			s := buildSubmitter(ctx, v)
			rc, err := s.Submit(ctx, &form)

			b := submit.Render(submit.Outcome{Receipt: rc, Err: err}, submit.Contact{
				Email: v.GetString(keyContactEmail),
				Phone: v.GetString(keyContactPhone),
			})
			fmt.Fprintln(cmd.OutOrStdout(), b.Text)
			if err != nil {
				return err
			}
			logger.Debug().Str("lead_id", rc.LeadID).Str("via", rc.Via).Bool("email_sent", rc.EmailSent).Msg("lead stored")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "submitter name (required)")
	f.StringVar(&form.Email, "email", "", "submitter email (required)")
	f.StringVar(&form.Message, "message", "", "message, at least 10 characters (required)")
	f.StringVar(&form.Company, "company", "", "company")
	f.StringVar(&form.Phone, "phone", "", "phone")
	f.StringVar(&form.Service, "service", "", "service of interest")
	return cmd
}

// buildSubmitter composes the strategy chain from settings.
func buildSubmitter(ctx context.Context, v *viper.Viper) *submit.Submitter {
	base := strings.TrimRight(v.GetString(keyBaseURL), "/")
	anon := v.GetString(keyAnonKey)
	token := v.GetString(keyToken)
	if token == "" {
		token = anon
	}

	var strategies []submit.Strategy
	if v.GetBool(keyDirect) && anon != "" {
		handle := submit.NewLazyHandle(ctx, tableWhenLive(base, anon), 100*time.Millisecond, v.GetUint(keyReadyTries))
		direct := &submit.DirectStrategy{Handle: handle}
		if v.GetBool(keyFollowUp) {
			direct.FollowUp = submit.NewFollowUp(base+v.GetString(keyAPIBase), token, 0)
		}
		strategies = append(strategies, direct)
	}
	strategies = append(strategies, submit.NewEndpointStrategy(base, v.GetString(keyEndpointPath), token, 0))

	return submit.NewSubmitter(
		submit.WithStrategies(strategies...),
		submit.WithTracker(submit.LogTracker{}),
	)
}

// tableWhenLive builds the table client once the service answers /live.
func tableWhenLive(base, anonKey string) func(context.Context) (submit.TableHandle, error) {
	return func(ctx context.Context) (submit.TableHandle, error) {
		resp, err := resty.New().SetTimeout(5 * time.Second).R().SetContext(ctx).Get(base + "/live")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("liveness check returned status %d", resp.StatusCode())
		}
		return submit.NewRESTTable(base, anonKey, 0), nil
	}
}
