package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// generated is the canned recipe the stub streams back. Real generation
// happens server side; the stub only exercises the streaming contract.
var generated = struct {
	Name        string
	Description string
	Ingredients []string
	Directions  []string
}{
	Name:        "Pan-Seared Salmon",
	Description: "Crispy-skin salmon with a lemon butter pan sauce.",
	Ingredients: []string{"2 salmon fillets", "2 tbsp butter", "1 lemon", "salt"},
	Directions:  []string{"Pat the fillets dry and season.", "Sear skin side down.", "Baste with butter and lemon."},
}

type frameRecipe struct {
	Name        string   `json:"recipe_name,omitempty"`
	Description string   `json:"recipe_description,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Directions  []string `json:"directions,omitempty"`
}

// streamFrames writes the field frames followed by the completed frame,
// flushing after each so clients receive them incrementally.
func (s *Server) streamFrames(w http.ResponseWriter, r *http.Request, suffix string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	emit := func(v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		if s.FrameDelay > 0 {
			select {
			case <-time.After(s.FrameDelay):
			case <-r.Context().Done():
				return false
			}
		}
		return r.Context().Err() == nil
	}

	type frame struct {
		Status string      `json:"status"`
		Recipe frameRecipe `json:"recipe"`
	}

	steps := []frame{
		{Status: "processing"},
		{Status: "name_" + suffix, Recipe: frameRecipe{Name: generated.Name}},
		{Status: "description_" + suffix, Recipe: frameRecipe{Description: generated.Description}},
		{Status: "ingredients_" + suffix, Recipe: frameRecipe{Ingredients: generated.Ingredients}},
		{Status: "directions_" + suffix, Recipe: frameRecipe{Directions: generated.Directions}},
		{Status: "completed"},
	}
	for _, f := range steps {
		if !emit(f) {
			s.log.Debug().Msg("generation stream aborted")
			return
		}
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	if _, _, err := r.FormFile("image"); err != nil {
		writeError(w, http.StatusBadRequest, "image part missing")
		return
	}
	s.streamFrames(w, r, "generated")
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipe frameRecipe `json:"recipe"`
		Prompt string      `json:"prompt"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	s.streamFrames(w, r, "regenerated")
}
