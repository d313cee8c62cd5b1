package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptArg is a {{name}} placeholder in a prompt body.
type promptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
}

// promptDef is one prompt file: YAML frontmatter, then the message body.
type promptDef struct {
	Name        string      `yaml:"-"`
	Description string      `yaml:"description"`
	Arguments   []promptArg `yaml:"arguments"`
	Body        string      `yaml:"-"`
}

// loadPrompts parses every embedded prompt, in file name order.
func loadPrompts() ([]promptDef, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}
	var defs []promptDef
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			return nil, err
		}
		def, err := parsePrompt(content)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", entry.Name(), err)
		}
		def.Name = strings.TrimSuffix(entry.Name(), ".md")
		defs = append(defs, def)
	}
	return defs, nil
}

// parsePrompt splits "---\n<yaml>\n---\n<body>". Content without
// frontmatter is all body.
func parsePrompt(content []byte) (promptDef, error) {
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return promptDef{Body: string(content)}, nil
	}
	front, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return promptDef{Body: string(content)}, nil
	}

	var def promptDef
	if err := yaml.Unmarshal(front, &def); err != nil {
		return promptDef{}, err
	}
	def.Body = strings.TrimPrefix(string(body), "\n")
	for _, arg := range def.Arguments {
		if !strings.Contains(def.Body, "{{"+arg.Name+"}}") {
			return promptDef{}, fmt.Errorf("argument %q is not used in the body", arg.Name)
		}
	}
	return def, nil
}

// render fills the placeholders from args, falling back to defaults.
func (d promptDef) render(args map[string]string) string {
	pairs := make([]string, 0, 2*len(d.Arguments))
	for _, arg := range d.Arguments {
		value := args[arg.Name]
		if value == "" {
			value = arg.Default
		}
		pairs = append(pairs, "{{"+arg.Name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(d.Body)
}

func (s *Server) registerPrompts() error {
	defs, err := loadPrompts()
	if err != nil {
		return err
	}
	for _, def := range defs {
		prompt := &mcp.Prompt{Name: def.Name, Description: def.Description}
		for _, arg := range def.Arguments {
			desc := arg.Description
			if arg.Default != "" {
				desc += fmt.Sprintf(" (default %s)", arg.Default)
			}
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: desc,
			})
		}
		s.server.AddPrompt(prompt, promptHandler(def))
	}
	return nil
}

func promptHandler(def promptDef) mcp.PromptHandler {
	return func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: def.render(args)},
			}},
		}, nil
	}
}
