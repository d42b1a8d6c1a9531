package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/benvon/board-insights/internal/app"
)

func main() {
	a, shutdown, err := app.Bootstrap(context.Background(), "analyzer", false)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown()

	lambda.StartWithOptions(a.Analysis.Handle, lambda.WithEnableSIGTERM(shutdown))
}
