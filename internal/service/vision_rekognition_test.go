package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapcook/backend/internal/types"
)

type fakeRekognition struct {
	input *rekognition.DetectLabelsInput
	out   *rekognition.DetectLabelsOutput
	err   error
}

func (f *fakeRekognition) DetectLabels(_ context.Context, params *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.input = params
	return f.out, f.err
}

func label(name string, categories ...string) rektypes.Label {
	l := rektypes.Label{Name: aws.String(name)}
	for _, c := range categories {
		l.Categories = append(l.Categories, rektypes.LabelCategory{Name: aws.String(c)})
	}
	return l
}

func TestRekognitionClassifierKeepsFood(t *testing.T) {
	fake := &fakeRekognition{out: &rekognition.DetectLabelsOutput{Labels: []rektypes.Label{
		label("Broccoli", "Food and Beverage"),
		label("Knife", "Home and Indoors"),
		label("Egg", "Food and Beverage"),
		label("Kitchen", "Home and Indoors", "Buildings and Architecture"),
	}}}
	classifier := newRekognitionClassifier(fake)

	labels, err := classifier.Classify(context.Background(), types.ImageInput{Data: []byte("jpeg")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Broccoli", "Egg"}, labels)
	assert.Equal(t, []byte("jpeg"), fake.input.Image.Bytes)
	assert.Equal(t, float32(75), aws.ToFloat32(fake.input.MinConfidence))
}

func TestRekognitionClassifierError(t *testing.T) {
	classifier := newRekognitionClassifier(&fakeRekognition{err: errors.New("throttled")})

	_, err := classifier.Classify(context.Background(), types.ImageInput{Data: []byte("jpeg")})
	assert.ErrorContains(t, err, "throttled")
}
