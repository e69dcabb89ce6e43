package gateway

import (
	"net/http"
	"regexp"

	"noit-gateway/internal/shape"
)

// emotionLabels is the vocabulary the upstream emotion model has emitted so
// far. Membership is a soft check: new labels are logged, never rejected.
var emotionLabels = []string{
	"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral",
}

var temaPattern = regexp.MustCompile(`^Tema_\d+$`)

func scoreBounds() (*float64, *float64) {
	min, max := 0.0, 1.0
	return &min, &max
}

func competitorsShape() *shape.Shape {
	return &shape.Shape{
		Name: "competitors",
		Fields: []shape.Field{
			{Name: "business_id", Kind: shape.String},
			{Name: "competitors", Kind: shape.Array, Elem: &shape.Shape{
				Fields: []shape.Field{
					{Name: "id", Kind: shape.String},
					{Name: "competitor_name", Kind: shape.String},
					{Name: "similarity_score", Kind: shape.Number},
				},
			}},
		},
	}
}

func commentCategoriesShape() *shape.Shape {
	return &shape.Shape{
		Name: "comment-categories",
		Fields: []shape.Field{
			{Name: "competitor_id", Kind: shape.String, Optional: true},
			{Name: "category_counts", Kind: shape.Object},
			{Name: "categorized_comments", Kind: shape.Object},
		},
		Checks: []shape.Check{
			shape.GroupCountCheck{Counts: "category_counts", Groups: "categorized_comments"},
			shape.KeyPatternCheck{Field: "categorized_comments", Pattern: temaPattern},
		},
	}
}

func sentimentShape() *shape.Shape {
	min, max := scoreBounds()
	return &shape.Shape{
		Name: "sentiment-analysis",
		Fields: []shape.Field{
			{Name: "competitor_id", Kind: shape.String, Optional: true},
			{Name: "comments", Kind: shape.Array, Elem: &shape.Shape{
				Fields: []shape.Field{
					{Name: "text", Kind: shape.String, Optional: true},
					{Name: "top_label", Kind: shape.String, Enum: emotionLabels},
					{Name: "scores", Kind: shape.Array, Elem: &shape.Shape{
						Fields: []shape.Field{
							{Name: "label", Kind: shape.String},
							{Name: "score", Kind: shape.Number, Min: min, Max: max},
						},
					}},
				},
			}},
		},
	}
}

func wordcloudShape() *shape.Shape {
	return &shape.Shape{
		Name: "wordcloud",
		Fields: []shape.Field{
			{Name: "competitor_id", Kind: shape.String, Optional: true},
			{Name: "words", Kind: shape.Array, Elem: &shape.Shape{
				Fields: []shape.Field{
					{Name: "word", Kind: shape.String},
					{Name: "count", Kind: shape.Number},
				},
			}},
		},
	}
}

func imageReportShape() *shape.Shape {
	return &shape.Shape{
		Name: "image-analysis-report",
		Fields: []shape.Field{
			{Name: "competitor_id", Kind: shape.String, Optional: true},
			{Name: "total_images", Kind: shape.Number},
			{Name: "images_analyzed", Kind: shape.Array},
		},
		Checks: []shape.Check{
			shape.CountCheck{Total: "total_images", Items: "images_analyzed"},
		},
	}
}

func imgPostsShape() *shape.Shape {
	return &shape.Shape{
		Name: "img-posts",
		Fields: []shape.Field{
			{Name: "posts", Kind: shape.Array, Elem: &shape.Shape{
				Fields: []shape.Field{
					{Name: "id", Kind: shape.String},
					{Name: "image_url", Kind: shape.String},
					{Name: "caption", Kind: shape.String, Optional: true},
				},
			}},
		},
	}
}

func postsImageAnalysisShape() *shape.Shape {
	return &shape.Shape{
		Name: "posts-image-analysis",
		Fields: []shape.Field{
			{Name: "posts", Kind: shape.Array, Elem: &shape.Shape{
				Fields: []shape.Field{
					{Name: "post_id", Kind: shape.String},
					{Name: "analysis", Kind: shape.Object},
				},
			}},
		},
	}
}

func businessIdeaListShape() *shape.Shape {
	return &shape.Shape{
		Name: "business-ideas",
		Kind: shape.Array,
		Elem: &shape.Shape{
			Fields: []shape.Field{
				{Name: "id", Kind: shape.String},
				{Name: "title", Kind: shape.String},
				{Name: "description", Kind: shape.String, Optional: true},
				{Name: "url", Kind: shape.String, Optional: true},
			},
		},
	}
}

func businessIdeaShape() *shape.Shape {
	return &shape.Shape{
		Name: "business-idea",
		Fields: []shape.Field{
			{Name: "id", Kind: shape.String},
			{Name: "title", Kind: shape.String},
			{Name: "description", Kind: shape.String, Optional: true},
			{Name: "url", Kind: shape.String, Optional: true},
		},
	}
}

func chatShape() *shape.Shape {
	return &shape.Shape{
		Name: "chat",
		Fields: []shape.Field{
			{Name: "response", Kind: shape.String},
			{Name: "session_id", Kind: shape.String, Optional: true},
		},
	}
}

// Endpoints is the whole route table: one descriptor per browser-facing
// operation, all served by the same generic Handler.
func Endpoints() []Endpoint {
	return []Endpoint{
		{
			Name:     "business-idea-list",
			Method:   http.MethodGet,
			Route:    "/api/businessIdea/get",
			Upstream: "/api/v1/business-idea",
			Resource: "las ideas de negocio",
			Shape:    businessIdeaListShape(),
			Remap: func(payload any) any {
				return map[string]any{"projects": payload}
			},
		},
		{
			Name:     "business-idea-create",
			Method:   http.MethodPost,
			Route:    "/api/businessIdea/create",
			Upstream: "/api/v1/business-idea",
			Resource: "la idea de negocio",
			Params: []Param{
				{Name: "title", In: FromBody, Missing: "El título es requerido"},
				{Name: "description", In: FromBody, Missing: "La descripción es requerida"},
			},
			Shape: businessIdeaShape(),
			Remap: func(payload any) any {
				return map[string]any{"businessIdea": payload}
			},
		},
		{
			Name:     "competitors",
			Method:   http.MethodGet,
			Route:    "/api/businessIdea/getCompetitors",
			Upstream: "/api/v1/analyze-competitors/{business_id}/competitors",
			Resource: "los competidores",
			Params: []Param{
				{Name: "business_id", In: FromQuery, Missing: "Business ID es requerido"},
			},
			Shape: competitorsShape(),
		},
		{
			Name:     "comment-categories",
			Method:   http.MethodGet,
			Route:    "/api/competitor/commentCategories",
			Upstream: "/api/v1/analyze-competitors/instagram-comments/comment-categories/{competitor_id}",
			Resource: "las categorías de comentarios",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: commentCategoriesShape(),
		},
		{
			Name:     "sentiment-analysis",
			Method:   http.MethodGet,
			Route:    "/api/competitor/sentimentAnalysis",
			Upstream: "/api/v1/analyze-competitors/instagram-comments/sentiment-analysis/{competitor_id}",
			Resource: "el análisis de sentimiento",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: sentimentShape(),
		},
		{
			Name:     "wordcloud",
			Method:   http.MethodGet,
			Route:    "/api/competitor/wordcloud",
			Upstream: "/api/v1/analyze-competitors/instagram-comments/wordcloud/{competitor_id}",
			Resource: "la nube de palabras",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: wordcloudShape(),
		},
		{
			Name:     "image-analysis-report",
			Method:   http.MethodGet,
			Route:    "/api/competitor/imageAnalysisReport",
			Upstream: "/api/v1/analyze-competitors/instagram-image-analyzer/image-analysis-report/{competitor_id}",
			Resource: "el reporte de análisis de imágenes",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: imageReportShape(),
		},
		{
			Name:     "img-posts",
			Method:   http.MethodGet,
			Route:    "/api/competitor/imgPosts",
			Upstream: "/api/v1/analyze-competitors/instagram-image-analyzer/img-posts/{competitor_id}",
			Resource: "las publicaciones con imágenes",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: imgPostsShape(),
		},
		{
			Name:     "posts-image-analysis",
			Method:   http.MethodGet,
			Route:    "/api/competitor/postsImageAnalysis",
			Upstream: "/api/v1/analyze-competitors/instagram-image-analyzer/posts-image-analysis/{competitor_id}",
			Resource: "el análisis de imágenes de publicaciones",
			Params: []Param{
				{Name: "competitor_id", In: FromQuery, Missing: "Competitor ID es requerido"},
			},
			Shape: postsImageAnalysisShape(),
		},
		{
			Name:     "business-model-chat",
			Method:   http.MethodPost,
			Route:    "/api/chat",
			Upstream: "/api/v1/business-model/{id}/chat",
			Resource: "la sesión de chat",
			Params: []Param{
				{Name: "id", In: FromBody, Missing: "Session ID es requerido"},
				{Name: "message", In: FromBody, Missing: "El mensaje es requerido"},
			},
			Shape: chatShape(),
		},
		{
			Name:     "business-brief-chat",
			Method:   http.MethodPost,
			Route:    "/api/briefChat",
			Upstream: "/api/v1/business-brief/business/{business_id}/brief/chat",
			Resource: "el brief del negocio",
			Params: []Param{
				{Name: "business_id", In: FromBody, Missing: "Business ID es requerido"},
				{Name: "message", In: FromBody, Missing: "El mensaje es requerido"},
			},
			Shape: chatShape(),
		},
	}
}
