package rest

import (
	"html/template"
	"strings"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
)

type pageCell struct {
	Index int
	Mark  string
	Open  bool

	// Fading marks the cell its owner loses on their next move.
	Fading bool
}

type pageData struct {
	Title        string
	Message      string
	Disappearing bool
	Rows         [][]pageCell
}

func newPageData(session *entity.Session) pageData {
	game := session.Game
	data := pageData{
		Title:        session.Title(),
		Message:      game.Message(),
		Disappearing: game.IsDisappearing(),
		Rows:         make([][]pageCell, 0, 3),
	}
	fading, fades := game.NextEviction()

	for row := range 3 {
		cells := make([]pageCell, 0, 3)
		for col := range 3 {
			index := row*3 + col
			cells = append(cells, pageCell{
				Index:  index,
				Mark:   strings.ToLower(string(game.Board[index])),
				Open:   game.IsInProgress() && game.Board[index] == entity.MarkEmpty,
				Fading: fades && index == fading,
			})
		}
		data.Rows = append(data.Rows, cells)
	}

	return data
}

func loadPageTemplate() *template.Template {
	return template.Must(template.New("page").Parse(pageTemplate))
}

const pageTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8"/>
<title>{{.Title}}</title>
<style>
  .board { display: grid; grid-template-columns: repeat(3, 100px); gap: 4px; }
  .cell { width: 100px; height: 100px; font-size: 64px; border: 1px solid #333; background: #fff; }
  .cell.x::after { content: "X"; }
  .cell.o::after { content: "O"; }
  .cell.fading { opacity: 0.4; }
</style>
</head>
<body>
<h1 id="pageTitle">{{.Title}}</h1>
<div class="board">
{{- range .Rows}}
  {{- range .}}
  {{- if .Open}}
  <form method="post" action="/move"><input type="hidden" name="cell" value="{{.Index}}"><button class="cell" data-cell="{{.Index}}" type="submit"></button></form>
  {{- else}}
  <div class="cell {{.Mark}}{{if .Fading}} fading{{end}}" data-cell="{{.Index}}"></div>
  {{- end}}
  {{- end}}
{{- end}}
</div>
<p id="message">{{.Message}}</p>
{{- if .Disappearing}}
<p id="rule">Only your last three marks stay on the board.</p>
{{- end}}
<form method="post" action="/restart"><button id="restartButton" type="submit">Restart</button></form>
</body>
</html>
`
