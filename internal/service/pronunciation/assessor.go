package pronunciation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var (
	ErrNotConfigured = errors.New("speech service is not configured")
	ErrNoAudio       = errors.New("no user audio to assess")
)

// Audio captured from the browser arrives as 16 kHz 16-bit mono PCM chunks.
const (
	sampleRate     = 16000
	bitsPerSample  = 16
	channels       = 1
	requestTimeout = 30 * time.Second
)

// Chunk is one recorded audio fragment from the voice session. Only chunks
// spoken by the user count toward the assessment.
type Chunk struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Result is the pronunciation assessment returned alongside the
// conversation analysis.
type Result struct {
	AccuracyScore      float64      `json:"accuracy_score"`
	FluencyScore       float64      `json:"fluency_score"`
	CompletenessScore  float64      `json:"completeness_score"`
	PronunciationScore float64      `json:"pronunciation_score"`
	Words              []WordDetail `json:"words"`
}

// WordDetail scores a single recognized word.
type WordDetail struct {
	Word      string  `json:"word"`
	Accuracy  float64 `json:"accuracy"`
	ErrorType string  `json:"error_type"`
}

// Assessor scores spoken audio against a reference text using the Azure
// Speech pronunciation assessment API.
type Assessor struct {
	key      string
	region   string
	language string
	client   *http.Client
}

// NewAssessor builds an assessor. An empty key disables it.
func NewAssessor(key, region, language string) *Assessor {
	return &Assessor{
		key:      key,
		region:   region,
		language: language,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether speech credentials are configured.
func (a *Assessor) Enabled() bool {
	return a != nil && a.key != ""
}

// Assess concatenates the user's audio chunks, wraps them in a WAV
// container, and submits them for pronunciation scoring against the
// reference text.
func (a *Assessor) Assess(ctx context.Context, chunks []Chunk, referenceText string) (*Result, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}

	pcm, err := prepareAudio(chunks)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	params, err := assessmentParams(referenceText)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1?language=%s",
		a.region, a.language,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(wavAudio(pcm)))
	if err != nil {
		return nil, fmt.Errorf("build assessment request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Pronunciation-Assessment", params)
	req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", sampleRate))
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assessment request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read assessment response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assessment request failed: status %d: %s", resp.StatusCode, body)
	}

	return parseAssessment(body)
}

// prepareAudio decodes and concatenates the user-spoken chunks, skipping
// everything the assistant said.
func prepareAudio(chunks []Chunk) ([]byte, error) {
	var buffer bytes.Buffer
	for _, chunk := range chunks {
		if chunk.Type != "user" || chunk.Data == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(chunk.Data)
		if err != nil {
			log.Printf("[pronunciation] skipping undecodable chunk: %v", err)
			continue
		}
		buffer.Write(decoded)
	}
	return buffer.Bytes(), nil
}

func assessmentParams(referenceText string) (string, error) {
	raw, err := json.Marshal(map[string]string{
		"ReferenceText": referenceText,
		"GradingSystem": "HundredMark",
		"Granularity":   "Word",
		"Dimension":     "Comprehensive",
	})
	if err != nil {
		return "", fmt.Errorf("encode assessment params: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// wavAudio prepends a RIFF header describing the PCM format.
func wavAudio(pcm []byte) []byte {
	var buffer bytes.Buffer

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buffer.WriteString("RIFF")
	binary.Write(&buffer, binary.LittleEndian, uint32(36+len(pcm)))
	buffer.WriteString("WAVE")

	buffer.WriteString("fmt ")
	binary.Write(&buffer, binary.LittleEndian, uint32(16))
	binary.Write(&buffer, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buffer, binary.LittleEndian, uint16(channels))
	binary.Write(&buffer, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buffer, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buffer, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buffer, binary.LittleEndian, uint16(bitsPerSample))

	buffer.WriteString("data")
	binary.Write(&buffer, binary.LittleEndian, uint32(len(pcm)))
	buffer.Write(pcm)

	return buffer.Bytes()
}

type assessmentResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	NBest             []struct {
		PronunciationAssessment struct {
			AccuracyScore     float64 `json:"AccuracyScore"`
			FluencyScore      float64 `json:"FluencyScore"`
			CompletenessScore float64 `json:"CompletenessScore"`
			PronScore         float64 `json:"PronScore"`
		} `json:"PronunciationAssessment"`
		Words []struct {
			Word                    string `json:"Word"`
			PronunciationAssessment struct {
				AccuracyScore float64 `json:"AccuracyScore"`
				ErrorType     string  `json:"ErrorType"`
			} `json:"PronunciationAssessment"`
		} `json:"Words"`
	} `json:"NBest"`
}

func parseAssessment(body []byte) (*Result, error) {
	var parsed assessmentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse assessment response: %w", err)
	}
	if parsed.RecognitionStatus != "Success" || len(parsed.NBest) == 0 {
		return nil, fmt.Errorf("speech not recognized: status %q", parsed.RecognitionStatus)
	}

	best := parsed.NBest[0]
	result := &Result{
		AccuracyScore:      best.PronunciationAssessment.AccuracyScore,
		FluencyScore:       best.PronunciationAssessment.FluencyScore,
		CompletenessScore:  best.PronunciationAssessment.CompletenessScore,
		PronunciationScore: best.PronunciationAssessment.PronScore,
	}
	for _, word := range best.Words {
		result.Words = append(result.Words, WordDetail{
			Word:      word.Word,
			Accuracy:  word.PronunciationAssessment.AccuracyScore,
			ErrorType: word.PronunciationAssessment.ErrorType,
		})
	}
	return result, nil
}
