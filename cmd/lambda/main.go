// Command lambda serves the lead API from AWS Lambda behind an API Gateway
// HTTP API. Configuration comes from the function's environment.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-lead-backend/internal/app"
	"github.com/tbourn/go-lead-backend/internal/config"
	"github.com/tbourn/go-lead-backend/internal/lambdaproxy"
	"github.com/tbourn/go-lead-backend/internal/sysutil"
)

func main() {
	cfg := config.MustLoad()
	// Lambda captures stdout; no file sink.
	cfg.Log.File = ""
	sysutil.InitLogger(cfg.Log, cfg.OTEL.ServiceName)

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	lambda.Start(lambdaproxy.New(a.Engine))
}
