package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action selects what the orchestrator generates from article content.
type Action string

const (
	ActionSummary      Action = "summary"
	ActionTheses       Action = "theses"
	ActionTelegram     Action = "telegram"
	ActionTranslate    Action = "translate"
	ActionIllustration Action = "illustration"
)

// Supported response languages. Anything unrecognized falls back to Russian.
const (
	LangRU = "ru"
	LangEN = "en"
	LangES = "es"
)

func normalizeLang(lang string) string {
	switch lang {
	case LangEN, LangES:
		return lang
	default:
		return LangRU
	}
}

// promptSet is one language's worth of prompt text for an action. Every
// string is written entirely in that language; the system instruction also
// tells the model to answer only in it.
type promptSet struct {
	System   string
	Question string
	Note     string
}

// labelSet holds the short labels embedded into user prompts.
type labelSet struct {
	Title             string
	Content           string
	Theses            string
	Source            string
	SourceInstruction string
}

// actionConfig drives the parameterized orchestrator: model and temperature
// for the upstream call, the content cap before truncation (0 disables it),
// the error code reported on provider failure, the JSON field carrying the
// result, and the per-language prompt table.
type actionConfig struct {
	Model       string
	Temperature float32
	MaxContent  int
	ErrorCode   string
	Field       string
	Prompts     map[string]promptSet
}

// Default models match the free OpenRouter tier; operators override them via
// the models YAML file.
const (
	defaultTextModel        = "deepseek/deepseek-r1-0528:free"
	defaultTranslateModel   = "deepseek/deepseek-chat"
	defaultImagePromptModel = "nex-agi/deepseek-v3.1-nex-n1:free"
)

// Content caps keep prompts inside the upstream model's token budget,
// assuming roughly four characters per token with headroom for the system
// prompt and request structure.
const (
	summaryMaxContent  = 20000
	thesesMaxContent   = 18000
	telegramMaxContent = 20000
)

var labels = map[string]labelSet{
	LangRU: {
		Title:             "Заголовок",
		Content:           "Контент",
		Theses:            "Тезисы",
		Source:            "🔗 Источник:",
		SourceInstruction: "Обязательно добавь в конце поста ссылку на источник:",
	},
	LangEN: {
		Title:             "Title",
		Content:           "Content",
		Theses:            "Theses",
		Source:            "🔗 Source:",
		SourceInstruction: "Be sure to add the source link at the end of the post:",
	},
	LangES: {
		Title:             "Título",
		Content:           "Contenido",
		Theses:            "Tesis",
		Source:            "🔗 Fuente:",
		SourceInstruction: "Asegúrate de añadir el enlace a la fuente al final de la publicación:",
	},
}

var summaryPrompts = map[string]promptSet{
	LangRU: {
		System:   "Ты эксперт по анализу статей. ВАЖНО: Отвечай ТОЛЬКО на русском языке. Создай краткое, но информативное описание статьи в 2-3 предложениях. Опиши основную тему статьи и ключевые моменты, которые в ней рассматриваются. Будь точным и лаконичным.",
		Question: "О чем эта статья?",
		Note:     "[Примечание: статья была обрезана из-за ограничений модели, анализ выполнен на основе начала статьи]",
	},
	LangEN: {
		System:   "You are an expert in article analysis. IMPORTANT: Respond ONLY in English. Create a brief but informative description of the article in 2-3 sentences. Describe the main topic of the article and the key points it covers. Be precise and concise.",
		Question: "What is this article about?",
		Note:     "[Note: the article was truncated due to model limitations, the analysis is based on the beginning of the article]",
	},
	LangES: {
		System:   "Eres un experto en análisis de artículos. IMPORTANTE: Responde SOLO en español. Crea una descripción breve pero informativa del artículo en 2-3 oraciones. Describe el tema principal del artículo y los puntos clave que aborda. Sé preciso y conciso.",
		Question: "¿De qué trata este artículo?",
		Note:     "[Nota: el artículo fue truncado debido a las limitaciones del modelo, el análisis se basa en el comienzo del artículo]",
	},
}

var thesesPrompts = map[string]promptSet{
	LangRU: {
		System:   "Ты эксперт по анализу статей. ВАЖНО: Отвечай ТОЛЬКО на русском языке. Создай список основных тезисов статьи в формате маркированного списка (используй символы • или -). Каждый тезис должен быть кратким (1-2 предложения), информативным и отражать ключевую мысль. Выдели 5-8 наиболее важных тезисов. Все тезисы должны быть написаны на русском языке.",
		Question: "Создай тезисы для этой статьи на русском языке.",
		Note:     "[Примечание: статья была обрезана из-за ограничений модели, тезисы созданы на основе начала статьи]",
	},
	LangEN: {
		System:   "You are an expert in article analysis. IMPORTANT: Respond ONLY in English. Create a list of main theses of the article in bullet list format (use • or - symbols). Each thesis should be brief (1-2 sentences), informative and reflect the key idea. Highlight 5-8 most important theses. All theses must be written in English.",
		Question: "Create theses for this article in English.",
		Note:     "[Note: the article was truncated due to model limitations, theses are created based on the beginning of the article]",
	},
	LangES: {
		System:   "Eres un experto en análisis de artículos. IMPORTANTE: Responde SOLO en español. Crea una lista de las tesis principales del artículo en formato de lista con viñetas (usa símbolos • o -). Cada tesis debe ser breve (1-2 oraciones), informativa y reflejar la idea clave. Destaca 5-8 tesis más importantes. Todas las tesis deben estar escritas en español.",
		Question: "Crea tesis para este artículo en español.",
		Note:     "[Nota: el artículo fue truncado debido a las limitaciones del modelo, las tesis se crean basándose en el comienzo del artículo]",
	},
}

var telegramPrompts = map[string]promptSet{
	LangRU: {
		System:   "Ты создаешь посты для Telegram канала. ВАЖНО: Отвечай ТОЛЬКО на русском языке. Выводи только готовый пост, без предисловий, комментариев или объяснений. Не пиши 'Вот пост:', 'Я создал пост:' или подобные фразы. Начинай сразу с текста поста. Пост должен быть кратким, информативным, привлекательным и содержать призыв к действию. В конце поста обязательно добавь ссылку на источник статьи.",
		Question: "Создай пост для Telegram на основе этой статьи.",
		Note:     "[Примечание: статья была обрезана из-за ограничений модели, пост создан на основе начала статьи]",
	},
	LangEN: {
		System:   "You create posts for a Telegram channel. IMPORTANT: Respond ONLY in English. Output only the finished post, without preambles, comments or explanations. Do not write 'Here is the post:', 'I created a post:' or similar phrases. Start immediately with the post text. The post should be brief, informative, engaging and contain a call to action. At the end of the post, be sure to add a link to the source article.",
		Question: "Create a Telegram post based on this article.",
		Note:     "[Note: the article was truncated due to model limitations, the post is based on the beginning of the article]",
	},
	LangES: {
		System:   "Creas publicaciones para un canal de Telegram. IMPORTANTE: Responde SOLO en español. Muestra solo la publicación terminada, sin preámbulos, comentarios ni explicaciones. No escribas 'Aquí está la publicación:', 'He creado una publicación:' ni frases similares. Comienza inmediatamente con el texto de la publicación. La publicación debe ser breve, informativa, atractiva y contener una llamada a la acción. Al final de la publicación, asegúrate de añadir el enlace al artículo original.",
		Question: "Crea una publicación para Telegram basada en este artículo.",
		Note:     "[Nota: el artículo fue truncado debido a las limitaciones del modelo, la publicación se basa en el comienzo del artículo]",
	},
}

var translatePrompts = map[string]promptSet{
	LangRU: {
		System:   "Ты профессиональный переводчик. Переведи следующий текст на русский язык, сохраняя структуру и стиль оригинала.",
		Question: "Переведи следующую статью на русский язык:",
	},
	LangEN: {
		System:   "You are a professional translator. Translate the following text into English, preserving the structure and style of the original.",
		Question: "Translate the following article into English:",
	},
	LangES: {
		System:   "Eres un traductor profesional. Traduce el siguiente texto al español, conservando la estructura y el estilo del original.",
		Question: "Traduce el siguiente artículo al español:",
	},
}

// illustrationPrompts is the image-description step. Whatever the UI
// language, the produced prompt itself must be English for the image model.
var illustrationPrompts = map[string]promptSet{
	LangRU: {
		System:   "Ты эксперт по созданию промптов для генерации изображений. На основе тезисов статьи создай детальный промпт для генерации иллюстрации на английском языке. Промпт должен описывать визуальную сцену, основные элементы, стиль и настроение. Промпт должен быть на английском языке и содержать только описание без дополнительных комментариев. Ответ должен начинаться сразу с описания изображения.",
		Question: "Создай промпт для генерации иллюстрации на основе этих тезисов статьи. Промпт должен быть на английском языке.",
	},
	LangEN: {
		System:   "You are an expert at creating prompts for image generation. Based on the article theses, create a detailed prompt for generating an illustration in English. The prompt should describe the visual scene, main elements, style and mood. The prompt should be in English and contain only the description without additional comments. The response should start immediately with the image description.",
		Question: "Create a prompt for generating an illustration based on these article theses. The prompt should be in English.",
	},
	LangES: {
		System:   "Eres un experto en crear prompts para generación de imágenes. Basándote en las tesis del artículo, crea un prompt detallado para generar una ilustración en inglés. El prompt debe describir la escena visual, los elementos principales, el estilo y el estado de ánimo. El prompt debe estar en inglés y contener solo la descripción sin comentarios adicionales. La respuesta debe comenzar inmediatamente con la descripción de la imagen.",
		Question: "Crea un prompt para generar una ilustración basada en estas tesis del artículo. El prompt debe estar en inglés.",
	},
}

func defaultActions() map[Action]*actionConfig {
	return map[Action]*actionConfig{
		ActionSummary: {
			Model:       defaultTextModel,
			Temperature: 0.4,
			MaxContent:  summaryMaxContent,
			ErrorCode:   "SUMMARY_ERROR",
			Field:       "summary",
			Prompts:     summaryPrompts,
		},
		ActionTheses: {
			Model:       defaultTextModel,
			Temperature: 0.5,
			MaxContent:  thesesMaxContent,
			ErrorCode:   "THESES_ERROR",
			Field:       "theses",
			Prompts:     thesesPrompts,
		},
		ActionTelegram: {
			Model:       defaultTextModel,
			Temperature: 0.6,
			MaxContent:  telegramMaxContent,
			ErrorCode:   "TELEGRAM_ERROR",
			Field:       "post",
			Prompts:     telegramPrompts,
		},
		ActionTranslate: {
			Model:       defaultTranslateModel,
			Temperature: 0.3,
			MaxContent:  0,
			ErrorCode:   "TRANSLATION_ERROR",
			Field:       "translation",
			Prompts:     translatePrompts,
		},
		ActionIllustration: {
			Model:       defaultImagePromptModel,
			Temperature: 0.7,
			MaxContent:  thesesMaxContent,
			ErrorCode:   "PROMPT_ERROR",
			Field:       "illustration",
			Prompts:     illustrationPrompts,
		},
	}
}

// modelsFile is the optional YAML override for per-action models and
// temperatures, loaded once at startup.
//
// actions:
//   summary:
//     model: deepseek/deepseek-chat
//     temperature: 0.2
type modelsFile struct {
	Actions map[string]struct {
		Model       string   `yaml:"model"`
		Temperature *float32 `yaml:"temperature"`
	} `yaml:"actions"`
}

// LoadModelOverrides applies per-action model/temperature overrides from a
// YAML file. Unknown action names are rejected so typos do not silently keep
// defaults.
func (o *Orchestrator) LoadModelOverrides(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cfg modelsFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for name, override := range cfg.Actions {
		action, ok := o.actions[Action(name)]
		if !ok {
			return fmt.Errorf("unknown action %q in %s", name, path)
		}
		if override.Model != "" {
			action.Model = override.Model
		}
		if override.Temperature != nil {
			action.Temperature = *override.Temperature
		}
	}
	return nil
}

// ErrorCode names the taxonomy code an action's unforeseen failures report
// under. Illustration uses its own catch-all code; its per-step codes
// (THESES_ERROR, PROMPT_ERROR, IMAGE_GENERATION_ERROR) are assigned where
// the steps fail.
func ErrorCode(action Action) string {
	switch action {
	case ActionSummary:
		return "SUMMARY_ERROR"
	case ActionTheses:
		return "THESES_ERROR"
	case ActionTelegram:
		return "TELEGRAM_ERROR"
	case ActionTranslate:
		return "TRANSLATION_ERROR"
	case ActionIllustration:
		return "ILLUSTRATION_ERROR"
	default:
		return "INVALID_INPUT"
	}
}

// ResultField names the JSON field carrying the action's result.
func ResultField(action Action) string {
	switch action {
	case ActionSummary:
		return "summary"
	case ActionTheses:
		return "theses"
	case ActionTelegram:
		return "post"
	case ActionTranslate:
		return "translation"
	case ActionIllustration:
		return "illustration"
	default:
		return ""
	}
}
