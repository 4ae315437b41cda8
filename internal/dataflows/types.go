package dataflows

// pairResponse is the exchangerate-api.com v6 pair endpoint payload.
type pairResponse struct {
	Result             string   `json:"result"`
	BaseCode           string   `json:"base_code"`
	TargetCode         string   `json:"target_code"`
	ConversionRate     *float64 `json:"conversion_rate"`
	TimeLastUpdateUTC  string   `json:"time_last_update_utc"`
	TimeNextUpdateUTC  string   `json:"time_next_update_utc"`
	TimeLastUpdateUnix int64    `json:"time_last_update_unix"`
	ErrorType          string   `json:"error-type"`
}

// failure reports an error body the API sent with a 200 status. A missing
// result field is accepted as long as the rate is present.
func (p pairResponse) failure() string {
	if p.Result != "" && p.Result != "success" {
		if p.ErrorType != "" {
			return "API returned error: " + p.ErrorType
		}
		return "API returned result " + p.Result
	}
	if p.ConversionRate == nil {
		return "response has no conversion_rate"
	}
	return ""
}

// everythingResponse is the newsapi.org v2 /everything payload.
type everythingResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []newsArticle `json:"articles"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
}

type newsArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (p everythingResponse) failure() string {
	if p.Status == "" || p.Status == "ok" {
		return ""
	}
	if p.Message != "" {
		return "API returned error: " + p.Message
	}
	if p.Code != "" {
		return "API returned error: " + p.Code
	}
	return "API returned status " + p.Status
}
