package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"grasshopper/internal/infra/i18n"
	"grasshopper/internal/infra/logging"
	"grasshopper/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

type pageSet map[string]*template.Template

// pageData is the view model shared by every page.
type pageData struct {
	Active   string
	Snapshot usecase.Snapshot
	Outfit   *usecase.OutfitResult
	Reply    string
	Warning  string
	Error    string
	Idea     string
	Question string
	About    string
}

func loadPages(tr *i18n.Translator) (pageSet, error) {
	funcs := template.FuncMap{
		"t":        tr.T,
		"imageSrc": imageSrc,
		"splitParagraphs": func(s string) []string {
			var out []string
			for _, p := range strings.Split(s, "\n\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		},
	}
	pages := pageSet{}
	for _, name := range []string{"home", "wardrobe", "about"} {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// imageSrc trusts http(s) links and inline images returned by the image service.
func imageSrc(u string) template.URL {
	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "data:image/") {
		return template.URL(u)
	}
	return ""
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.Active = name
	if data.Snapshot.SessionID == "" {
		if sess := sessionFrom(r.Context()); sess != nil {
			data.Snapshot = s.sessionUC.Snapshot(r.Context(), sess)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[name].Execute(w, data); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Str("page", name).Msg("render page")
	}
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", pageData{})
}

func (s *Server) outfitForm(w http.ResponseWriter, r *http.Request) {
	idea := r.FormValue("idea")
	data := pageData{Idea: idea}
	res, err := s.outfitUC.Generate(r.Context(), sessionFrom(r.Context()), idea)
	if err != nil {
		status, body := s.classify(r, err, s.tr.T("outfit_missing"), "outfit_error")
		if body.Kind == "invalid_input" {
			data.Warning = body.Error
		} else {
			data.Error = body.Error
		}
		s.render(w, r, status, "home", data)
		return
	}
	data.Outfit = res
	s.render(w, r, http.StatusOK, "home", data)
}

func (s *Server) chatForm(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("message")
	data := pageData{Question: question}
	reply, err := s.chatUC.Send(r.Context(), sessionFrom(r.Context()), question)
	if err != nil {
		status, body := s.classify(r, err, s.tr.T("chat_missing"), "chat_error")
		if body.Kind == "invalid_input" {
			data.Warning = body.Error
		} else {
			data.Error = body.Error
		}
		s.render(w, r, status, "home", data)
		return
	}
	data.Question = ""
	data.Reply = reply
	s.render(w, r, http.StatusOK, "home", data)
}

func (s *Server) wardrobePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "wardrobe", pageData{})
}

func (s *Server) aboutPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", pageData{About: s.tr.About()})
}

func (s *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
