package xlsx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsSpreadsheet   = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsDocPropsTypes = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"

	relOfficeDocument = nsOfficeRels + "/officeDocument"
	relWorksheet      = nsOfficeRels + "/worksheet"
	relStyles         = nsOfficeRels + "/styles"
	relExtendedProps  = nsOfficeRels + "/extended-properties"
	relCoreProps      = nsPackageRels + "/metadata/core-properties"

	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML           = "application/xml"
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtendedProps = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Part names inside the package.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partWorkbook     = "xl/workbook.xml"
	partWorkbookRels = "xl/_rels/workbook.xml.rels"
	partStyles       = "xl/styles.xml"
)

type part struct {
	name        string
	contentType string // empty for parts covered by a Default entry
	body        []byte
}

type relationship struct {
	id     string
	typ    string
	target string // relative to the source part's directory
}

type relSet struct {
	rels []relationship
}

func (s *relSet) add(typ, target string) string {
	id := "rId" + strconv.Itoa(len(s.rels)+1)
	s.rels = append(s.rels, relationship{id: id, typ: typ, target: target})
	return id
}

type sheetEntry struct {
	name  string
	id    int
	relID string
}

// pkg is the in-memory manifest: every part and relationship is recorded
// here first and the cross-referencing documents are derived from it.
type pkg struct {
	parts    []part
	rootRels relSet
	wbRels   relSet
	sheets   []sheetEntry
}

func (p *pkg) add(name, contentType string, body []byte) {
	p.parts = append(p.parts, part{name: name, contentType: contentType, body: body})
}

func build(wb Workbook, opts Options) (*pkg, error) {
	if err := wb.Validate(); err != nil {
		return nil, err
	}
	p := &pkg{}
	ts := opts.timestamp()

	p.rootRels.add(relOfficeDocument, partWorkbook)
	p.rootRels.add(relCoreProps, partCore)
	p.rootRels.add(relExtendedProps, partApp)

	p.add(partCore, ctCoreProps, corePropsXML(opts.creator(), ts))

	names := make([]string, 0, len(wb.Sheets))
	for i, s := range wb.Sheets {
		file := fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		relID := p.wbRels.add(relWorksheet, file)
		p.sheets = append(p.sheets, sheetEntry{name: s.Name, id: i + 1, relID: relID})
		p.add(path.Join("xl", file), ctWorksheet, sheetXML(s))
		names = append(names, s.Name)
	}
	p.wbRels.add(relStyles, path.Base(partStyles))

	p.add(partApp, ctExtendedProps, appPropsXML(opts.creator(), names))
	p.add(partStyles, ctStyles, stylesXML())
	p.add(partWorkbook, ctWorkbook, p.workbookXML())
	p.add(partRootRels, "", relsXML(p.rootRels))
	p.add(partWorkbookRels, "", relsXML(p.wbRels))
	// The content type manifest lists every part, so it goes last.
	p.parts = append([]part{{name: partContentTypes, body: p.contentTypesXML()}}, p.parts...)
	return p, nil
}

func (p *pkg) contentTypesXML() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Types xmlns="%s">`, nsContentTypes)
	fmt.Fprintf(&b, `<Default Extension="rels" ContentType="%s"/>`, ctRelationships)
	fmt.Fprintf(&b, `<Default Extension="xml" ContentType="%s"/>`, ctXML)
	for _, pt := range p.parts {
		if pt.contentType == "" {
			continue
		}
		fmt.Fprintf(&b, `<Override PartName="/%s" ContentType="%s"/>`, escape(pt.name), pt.contentType)
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func relsXML(s relSet) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsPackageRels)
	for _, r := range s.rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, escape(r.target))
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (p *pkg) workbookXML() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<workbook xmlns="%s" xmlns:r="%s">`, nsSpreadsheet, nsOfficeRels)
	b.WriteString(`<fileVersion appName="xl"/><sheets>`)
	for _, s := range p.sheets {
		fmt.Fprintf(&b, `<sheet name="%s" sheetId="%d" r:id="%s"/>`, escape(s.name), s.id, s.relID)
	}
	b.WriteString(`</sheets></workbook>`)
	return []byte(b.String())
}

func corePropsXML(creator, ts string) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<cp:coreProperties xmlns:cp="%s" xmlns:dc="http://purl.org/dc/elements/1.1/" `+
		`xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" `+
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`, nsCoreProps)
	fmt.Fprintf(&b, `<dc:creator>%s</dc:creator>`, escape(creator))
	fmt.Fprintf(&b, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, escape(creator))
	fmt.Fprintf(&b, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, ts)
	fmt.Fprintf(&b, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, ts)
	b.WriteString(`</cp:coreProperties>`)
	return []byte(b.String())
}

func appPropsXML(creator string, sheetNames []string) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Properties xmlns="%s" xmlns:vt="%s">`, nsExtendedProps, nsDocPropsTypes)
	fmt.Fprintf(&b, `<Application>%s</Application>`, escape(creator))
	b.WriteString(`<DocSecurity>0</DocSecurity><ScaleCrop>false</ScaleCrop>`)
	fmt.Fprintf(&b, `<HeadingPairs><vt:vector size="2" baseType="variant">`+
		`<vt:variant><vt:lpstr>Worksheets</vt:lpstr></vt:variant>`+
		`<vt:variant><vt:i4>%d</vt:i4></vt:variant>`+
		`</vt:vector></HeadingPairs>`, len(sheetNames))
	fmt.Fprintf(&b, `<TitlesOfParts><vt:vector size="%d" baseType="lpstr">`, len(sheetNames))
	for _, n := range sheetNames {
		fmt.Fprintf(&b, `<vt:lpstr>%s</vt:lpstr>`, escape(n))
	}
	b.WriteString(`</vt:vector></TitlesOfParts>`)
	b.WriteString(`<Company></Company><LinksUpToDate>false</LinksUpToDate><SharedDoc>false</SharedDoc>`)
	b.WriteString(`<HyperlinksChanged>false</HyperlinksChanged><AppVersion>16.0300</AppVersion>`)
	b.WriteString(`</Properties>`)
	return []byte(b.String())
}

func stylesXML() []byte {
	return []byte(xmlHeader +
		`<styleSheet xmlns="` + nsSpreadsheet + `">` +
		`<fonts count="1"><font><sz val="11"/><color theme="1"/><name val="Calibri"/><family val="2"/></font></fonts>` +
		`<fills count="1"><fill><patternFill patternType="none"/></fill></fills>` +
		`<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>` +
		`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>` +
		`<cellXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/></cellXfs>` +
		`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>` +
		`</styleSheet>`)
}

func sheetXML(s Sheet) []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<worksheet xmlns="%s"><sheetData>`, nsSpreadsheet)
	for r, row := range s.Rows {
		fmt.Fprintf(&b, `<row r="%d">`, r+1)
		for c, cell := range row {
			ref := CellRef(c+1, r+1)
			switch cell.Kind {
			case KindNumber:
				fmt.Fprintf(&b, `<c r="%s"><v>%s</v></c>`, ref, strconv.FormatFloat(cell.Num, 'f', -1, 64))
			default:
				fmt.Fprintf(&b, `<c r="%s" t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`, ref, escape(cell.Str))
			}
		}
		b.WriteString(`</row>`)
	}
	b.WriteString(`</sheetData></worksheet>`)
	return []byte(b.String())
}

// escape makes s safe as XML text or attribute content. Newlines become
// character references instead of raw control characters.
func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
