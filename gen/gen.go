// Package gen writes the Definition of every model type in a package into a
// generated file, so table names, primary keys and columns are computed once
// at build time instead of on every model construction.
package gen

import (
	"bytes"
	"embed"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"

	"github.com/maxshaw/dbmodel"
	"github.com/maxshaw/dbmodel/qb"
)

const (
	DefaultDir    = "./internal/model"
	DefaultOutput = "definitions_gen.go"
)

//go:embed template/*
var tplDir embed.FS

type Options struct {
	Dir    string
	Output string

	// Connection is written into every Definition when set.
	Connection string
}

type Model struct {
	Name       string
	Table      string
	PrimaryKey string
	Columns    []string
}

type Result struct {
	File    string
	Package string
	Models  []Model
}

type model struct {
	Model

	hasPK     bool
	hasTable  bool
	isDefiner bool
}

func Generate(opts Options) (*Result, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}

	t, err := template.New("gen").Funcs(template.FuncMap{
		"lowerFirst": lowerFirst,
		"quote":      quote,
	}).ParseFS(tplDir, "template/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	files, err := filepath.Glob(filepath.Join(opts.Dir, "*.go"))
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", opts.Dir)
	}

	files = lo.Filter(files, func(file string, _ int) bool {
		base := filepath.Base(file)
		return !strings.HasSuffix(base, "_test.go") && base != filepath.Base(opts.Output)
	})
	if len(files) == 0 {
		return nil, errors.Errorf("model folder %s is empty", opts.Dir)
	}

	var (
		fset   = token.NewFileSet()
		pkg    string
		models = make(map[string]*model)
		tables = make(map[string]string)
		defs   = make(map[string]bool)
	)

	for _, file := range files {
		f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", file)
		}
		pkg = f.Name.Name

		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.IsExported() {
						if st, ok := ts.Type.(*ast.StructType); ok {
							models[ts.Name.Name] = parse(ts.Name.Name, st)
						}
					}
				}

			case *ast.FuncDecl:
				recv := receiverName(d.Recv)
				if recv == "" {
					continue
				}

				switch d.Name.Name {
				case "TableName":
					if table, ok := literalResult(d); ok {
						tables[recv] = table
					}
				case "Definition":
					defs[recv] = true
				}
			}
		}
	}

	var out []Model
	for _, name := range sortedKeys(models) {
		m := models[name]

		if table, ok := tables[name]; ok {
			m.Table = table
			m.hasTable = true
		}
		m.isDefiner = defs[name]

		if m.isDefiner || !(strings.HasSuffix(name, "Model") || m.hasPK || m.hasTable) {
			continue
		}

		out = append(out, m.Model)
	}

	if len(out) == 0 {
		return nil, errors.Errorf("no models found in %s", opts.Dir)
	}

	var buf bytes.Buffer
	err = t.ExecuteTemplate(&buf, "definitions.tmpl", map[string]any{
		"Package":    pkg,
		"Connection": opts.Connection,
		"Models":     out,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render definitions")
	}

	path := filepath.Join(opts.Dir, filepath.Base(opts.Output))

	src, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "format %s", path)
	}

	if err = os.WriteFile(path, src, 0o644); err != nil {
		return nil, errors.Wrapf(err, "write %s", path)
	}

	return &Result{File: path, Package: pkg, Models: out}, nil
}

func parse(name string, st *ast.StructType) *model {
	m := &model{Model: Model{Name: name, Table: dbmodel.InferTableName(name)}}

	var idColumn string
	for _, sf := range st.Fields.List {
		var tag string
		if sf.Tag != nil {
			if s, err := strconv.Unquote(sf.Tag.Value); err == nil {
				tag = reflect.StructTag(s).Get("db")
			}
		}
		if tag == "-" {
			continue
		}

		col, opts := qb.ParseTag(tag)

		for _, ident := range sf.Names {
			if !ident.IsExported() {
				continue
			}

			column := col
			if column == "" {
				column = strings.ToLower(ident.Name)
			}

			if _, ok := opts["pk"]; ok && !m.hasPK {
				m.PrimaryKey = column
				m.hasPK = true
			}
			if strings.ToUpper(ident.Name) == "ID" {
				idColumn = column
			}

			m.Columns = append(m.Columns, column)
		}
	}

	if !m.hasPK {
		m.PrimaryKey = lo.Ternary(idColumn != "", idColumn, "id")
	}

	return m
}

func receiverName(l *ast.FieldList) string {
	if l.NumFields() == 0 {
		return ""
	}

	typ := l.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if id, ok := typ.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// literalResult reports the string of a method whose whole body is `return "literal"`.
func literalResult(d *ast.FuncDecl) (string, bool) {
	if d.Body == nil || len(d.Body.List) != 1 {
		return "", false
	}

	ret, ok := d.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return "", false
	}

	lit, ok := ret.Results[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}

	s, err := strconv.Unquote(lit.Value)
	return s, err == nil && s != ""
}

func sortedKeys(m map[string]*model) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func quote(ss []string) string {
	return strings.Join(lo.Map(ss, func(s string, _ int) string {
		return strconv.Quote(s)
	}), ", ")
}

func lowerFirst(s string) string {
	if len(s) > 0 {
		var chars []rune
		for i, c := range s {
			if i == 0 {
				chars = append(chars, unicode.ToLower(c))
			} else {
				chars = append(chars, c)
			}
		}
		return string(chars)
	}
	return s
}
