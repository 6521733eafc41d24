package notify

// Message mirrors the Discord webhook execute payload. Only the parts we
// render are modelled.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedField with an empty Name and Value acts as a row break.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// SimpleTitle is the title used for command replies.
const SimpleTitle = "ScoreSaber Stats"

// Simple wraps a short status text in a single embed.
func Simple(text string) Message {
	return Message{Embeds: []Embed{{Title: SimpleTitle, Description: text}}}
}

// Text returns a plain rendition of m, used by console sinks and logs.
func (m Message) Text() string {
	var b []byte
	if m.Content != "" {
		b = append(b, m.Content...)
		b = append(b, '\n')
	}
	for _, e := range m.Embeds {
		if e.Author != nil {
			b = append(b, e.Author.Name...)
			b = append(b, '\n')
		}
		if e.Title != "" {
			b = append(b, "## "+e.Title+"\n"...)
		}
		if e.Description != "" {
			b = append(b, e.Description...)
			b = append(b, '\n')
		}
		for _, f := range e.Fields {
			if f.Name == "" && f.Value == "" {
				continue
			}
			b = append(b, f.Name+": "+f.Value+"\n"...)
		}
	}
	return string(b)
}
