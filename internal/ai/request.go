package ai

import "slices"

// Mode определяет вид запроса и, как следствие, модель.
type Mode int

const (
	ModeText Mode = iota + 1
	ModeVision
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeVision:
		return "vision"
	default:
		return "unknown"
	}
}

// Role автора реплики в истории диалога.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn одна реплика истории.
type Turn struct {
	Role Role
	Text string
}

// GenerationConfig параметры генерации.
type GenerationConfig struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            int32
}

// Пресеты генерации для текстовых вопросов и вопросов с вложением.
var (
	TextGeneration   = GenerationConfig{MaxOutputTokens: 512, Temperature: 0.5, TopP: 0.5, TopK: 25}
	VisionGeneration = GenerationConfig{MaxOutputTokens: 2048, Temperature: 0.4, TopP: 1.0, TopK: 32}
)

type HarmCategory int

const (
	HarmHateSpeech HarmCategory = iota + 1
	HarmHarassment
	HarmSexuallyExplicit
	HarmDangerousContent
)

type BlockThreshold int

const (
	BlockMediumAndAbove BlockThreshold = iota + 1
)

type SafetySetting struct {
	Category  HarmCategory
	Threshold BlockThreshold
}

// SafetyPolicy упорядоченный набор порогов блокировки по категориям.
type SafetyPolicy []SafetySetting

// DefaultSafety блокирует всё от уровня MEDIUM по всем четырём категориям. Одинакова для обоих режимов.
func DefaultSafety() SafetyPolicy {
	return SafetyPolicy{
		{Category: HarmHateSpeech, Threshold: BlockMediumAndAbove},
		{Category: HarmHarassment, Threshold: BlockMediumAndAbove},
		{Category: HarmSexuallyExplicit, Threshold: BlockMediumAndAbove},
		{Category: HarmDangerousContent, Threshold: BlockMediumAndAbove},
	}
}

// Part элемент полезной нагрузки: текст либо вложение.
type Part struct {
	Text       string
	Attachment *Attachment
}

// Request запрос к модели.
type Request struct {
	Mode       Mode
	History    []Turn
	Parts      []Part
	Generation GenerationConfig
	Safety     SafetyPolicy
	Stream     bool
}

// BuildText собирает текстовый запрос: новая реплика плюс вся предыдущая история.
func BuildText(history []Turn, utterance string) Request {
	return Request{
		Mode:       ModeText,
		History:    slices.Clone(history),
		Parts:      []Part{{Text: utterance}},
		Generation: TextGeneration,
		Safety:     DefaultSafety(),
		Stream:     true,
	}
}

// BuildVision собирает запрос с вложением. Порядок частей: [вложение, текст].
func BuildVision(utterance string, att Attachment) Request {
	return Request{
		Mode:       ModeVision,
		Parts:      []Part{{Attachment: &att}, {Text: utterance}},
		Generation: VisionGeneration,
		Safety:     DefaultSafety(),
		Stream:     true,
	}
}
