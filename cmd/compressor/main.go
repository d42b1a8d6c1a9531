package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/benvon/board-insights/internal/app"
)

func main() {
	a, shutdown, err := app.Bootstrap(context.Background(), "compressor", false)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown()

	lambda.StartWithOptions(a.Compress.Handle, lambda.WithEnableSIGTERM(shutdown))
}
