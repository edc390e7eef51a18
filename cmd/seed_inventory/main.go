// seed_inventory genera un script SQL de alta de ítems a partir de la exportación
// CSV del inventario heredado (ISO-8859-1, separador ';' o ',').
//
// Uso: go run ./cmd/seed_inventory -in inventario.csv [-out seed_items.sql] [-utf8]
//
// Columnas reconocidas (cabecera, sin importar mayúsculas): nombre|name,
// descripcion|description, categoria|category, estado|condition,
// serie|serial_number, cantidad|quantity, valor_unitario|unit_value.
// Los IDs se derivan de nombre y serie, así que volver a ejecutar el script no duplica ítems.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// itemNamespace espacio de nombres para los UUID v5 de ítems sembrados.
var itemNamespace = uuid.MustParse("6f1c2d7e-3b1a-4c55-9d0e-2a4b8c9e1f30")

var columnAliases = map[string]string{
	"nombre":         "name",
	"name":           "name",
	"descripcion":    "description",
	"descripción":    "description",
	"description":    "description",
	"categoria":      "category",
	"categoría":      "category",
	"category":       "category",
	"estado":         "condition",
	"condicion":      "condition",
	"condition":      "condition",
	"serie":          "serial_number",
	"serial":         "serial_number",
	"serial_number":  "serial_number",
	"cantidad":       "quantity",
	"quantity":       "quantity",
	"valor_unitario": "unit_value",
	"valor":          "unit_value",
	"unit_value":     "unit_value",
}

type seedItem struct {
	ID           string
	UUID         string
	Name         string
	Description  string
	Category     string
	Condition    string
	SerialNumber string
	Quantity     int
	UnitValue    decimal.Decimal
}

func main() {
	in := flag.String("in", "", "CSV de entrada (obligatorio)")
	out := flag.String("out", "seed_items.sql", "script SQL de salida")
	utf8 := flag.Bool("utf8", false, "la entrada ya está en UTF-8")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "falta -in")
		flag.Usage()
		os.Exit(2)
	}
	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var src io.Reader = f
	if !*utf8 {
		src = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	items, err := parseCSV(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	w, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := writeSQL(w, items, time.Now().UTC()); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ítems\n", *out, len(items))
}

// parseCSV lee la exportación; detecta el separador en la cabecera.
func parseCSV(r io.Reader) ([]seedItem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	firstLine, _, _ := strings.Cut(text, "\n")

	cr := csv.NewReader(strings.NewReader(text))
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if key, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New("cabecera sin columna de nombre")
	}

	var items []seedItem
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		it := seedItem{
			Name:         get("name"),
			Description:  get("description"),
			Category:     get("category"),
			Condition:    get("condition"),
			SerialNumber: get("serial_number"),
		}
		if it.Name == "" {
			continue
		}
		if q := get("quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, q)
			}
			it.Quantity = n
		}
		if v := get("unit_value"); v != "" {
			d, err := parseMoney(v)
			if err != nil {
				return nil, fmt.Errorf("línea %d: valor inválido %q", line, v)
			}
			it.UnitValue = d
		}
		key := strings.ToLower(it.Name) + "|" + strings.ToLower(it.SerialNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		id := uuid.NewSHA1(itemNamespace, []byte(key))
		it.ID = id.String()
		it.UUID = uuid.NewSHA1(id, []byte("public")).String()
		items = append(items, it)
	}
	return items, nil
}

// parseMoney acepta "1.234,50", "1234.50" y prefijos de moneda.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimLeft(s, "$₱PHP "))
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	} else if strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negativo")
	}
	return d, nil
}

func writeSQL(w io.Writer, items []seedItem, now time.Time) error {
	ts := now.Format(time.RFC3339)
	if _, err := fmt.Fprintf(w, "-- Ítems sembrados desde la exportación del inventario heredado\n-- Generado %s\n\n", ts); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(w,
			"INSERT INTO items (id, uuid, name, description, category, condition, serial_number, quantity, unit_value, status, created_at, updated_at)\n"+
				"VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s', %d, %s, 'active', '%s', '%s')\n"+
				"ON CONFLICT (id) DO NOTHING;\n",
			it.ID, it.UUID, escapeSQL(it.Name), escapeSQL(it.Description), escapeSQL(it.Category),
			escapeSQL(it.Condition), escapeSQL(it.SerialNumber), it.Quantity, it.UnitValue.StringFixed(2), ts, ts)
		if err != nil {
			return err
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
