package main

import (
	"newtonmachine/pkg/lambda"

	aws "github.com/aws/aws-lambda-go/lambda"
)

func main() {
	aws.Start(lambda.RenderImage)
}
