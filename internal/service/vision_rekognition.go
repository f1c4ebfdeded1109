package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/pageza/snapcook/backend/internal/types"
)

const foodLabelCategory = "Food and Beverage"

type rekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionClassifier detects ingredients with Amazon Rekognition labels.
// Only labels in the food category are kept.
type RekognitionClassifier struct {
	client        rekognitionAPI
	maxLabels     int32
	minConfidence float32
}

// NewRekognitionClassifier creates a classifier from an AWS config.
func NewRekognitionClassifier(cfg aws.Config) *RekognitionClassifier {
	return newRekognitionClassifier(rekognition.NewFromConfig(cfg))
}

func newRekognitionClassifier(client rekognitionAPI) *RekognitionClassifier {
	return &RekognitionClassifier{client: client, maxLabels: 25, minConfidence: 75}
}

func (r *RekognitionClassifier) Classify(ctx context.Context, image types.ImageInput) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &rektypes.Image{Bytes: image.Data},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition: detecting labels: %w", err)
	}

	var labels []string
	for _, l := range out.Labels {
		if l.Name == nil || !isFoodLabel(l) {
			continue
		}
		labels = append(labels, *l.Name)
	}
	return labels, nil
}

func isFoodLabel(l rektypes.Label) bool {
	for _, c := range l.Categories {
		if aws.ToString(c.Name) == foodLabelCategory {
			return true
		}
	}
	return false
}
