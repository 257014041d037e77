package middleware

import (
	"github.com/boardwalk-dev/boardwalk/pkg/translator"
	"github.com/gin-gonic/gin"
)

const contextLangKey = "lang"

// LanguageMiddleware stores the Accept-Language header for error
// translation, defaulting to English.
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = translator.LanguageEn
		}
		c.Set(contextLangKey, lang)
		c.Next()
	}
}

func GetLang(c *gin.Context) string {
	if lang, exists := c.Get(contextLangKey); exists {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	if lang := c.GetHeader("Accept-Language"); lang != "" {
		return lang
	}
	return translator.LanguageEn
}
