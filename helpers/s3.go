package helpers

import (
	"bytes"
	"fmt"

	"bitbucket.org/konstbyte/backend/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

func AddFileToS3(ctx *config.AppContext, buffer *bytes.Buffer, key string) (string, error) {
	uploader := s3manager.NewUploader(ctx.AwsS3)

	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(ctx.Config.AwsS3.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", ctx.Config.AwsS3.S3Url, key), nil
}
