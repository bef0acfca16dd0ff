package urdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/charmap"

	"github.com/robograph/urdf_browser/utils"
)

// MalformedDocumentError is the only fatal parse outcome: the text is
// not well-formed XML or there is no <robot> root container. Everything
// else degrades to skipped entities recorded in Document.Notes.
type MalformedDocumentError struct {
	Cause error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("Malformed robot document: %v", e.Cause)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Cause }

type xmlOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type xmlMesh struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr"`
}

type xmlGeometry struct {
	Mesh     *xmlMesh  `xml:"mesh"`
	Box      *struct{} `xml:"box"`
	Cylinder *struct{} `xml:"cylinder"`
	Sphere   *struct{} `xml:"sphere"`
}

type xmlVisual struct {
	Name     string       `xml:"name,attr"`
	Origin   *xmlOrigin   `xml:"origin"`
	Geometry *xmlGeometry `xml:"geometry"`
}

type xmlLink struct {
	Name    string      `xml:"name,attr"`
	Visuals []xmlVisual `xml:"visual"`
}

type xmlLinkRef struct {
	Link string `xml:"link,attr"`
}

type xmlAxis struct {
	XYZ string `xml:"xyz,attr"`
}

type xmlLimit struct {
	Lower    string `xml:"lower,attr"`
	Upper    string `xml:"upper,attr"`
	Effort   string `xml:"effort,attr"`
	Velocity string `xml:"velocity,attr"`
}

type xmlJoint struct {
	Name   string      `xml:"name,attr"`
	Type   string      `xml:"type,attr"`
	Origin *xmlOrigin  `xml:"origin"`
	Parent *xmlLinkRef `xml:"parent"`
	Child  *xmlLinkRef `xml:"child"`
	Axis   *xmlAxis    `xml:"axis"`
	Limit  *xmlLimit   `xml:"limit"`
}

type xmlRobot struct {
	XMLName xml.Name   `xml:"robot"`
	Name    string     `xml:"name,attr"`
	Links   []xmlLink  `xml:"link"`
	Joints  []xmlJoint `xml:"joint"`
}

// Some exporters emit latin-1 declarations instead of utf-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("Unsupported document charset %q", charset)
}

var zeroVec3 = mgl32.Vec3{}
var onesVec3 = mgl32.Vec3{1, 1, 1}

func parseOrigin(xo *xmlOrigin) Origin {
	if xo == nil {
		return Origin{}
	}
	return Origin{
		XYZ: utils.ParseTriple(xo.XYZ, zeroVec3),
		RPY: utils.ParseTriple(xo.RPY, zeroVec3),
	}
}

// Parse converts raw document text into the flat link/joint model,
// preserving document order of both lists. Only broken markup is fatal;
// incomplete entities are skipped and noted.
func Parse(data []byte) (*Document, error) {
	var robot xmlRobot

	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charsetReader
	if err := d.Decode(&robot); err != nil {
		return nil, &MalformedDocumentError{Cause: err}
	}

	doc := &Document{
		Name:   robot.Name,
		Links:  make([]Link, 0, len(robot.Links)),
		Joints: make([]Joint, 0, len(robot.Joints)),
	}

	for _, xl := range robot.Links {
		link := Link{Name: xl.Name}
		for iVisual, xv := range xl.Visuals {
			if xv.Geometry == nil || xv.Geometry.Mesh == nil || xv.Geometry.Mesh.Filename == "" {
				doc.note("skipped visual #%d of link %q: no mesh filename", iVisual, xl.Name)
				continue
			}

			scale := onesVec3
			if xv.Geometry.Mesh.Scale != "" {
				scale = utils.ParseTriple(xv.Geometry.Mesh.Scale, zeroVec3)
			}

			link.Visuals = append(link.Visuals, Visual{
				Name:   xv.Name,
				Origin: parseOrigin(xv.Origin),
				Mesh:   xv.Geometry.Mesh.Filename,
				Scale:  scale,
			})
		}
		doc.Links = append(doc.Links, link)
	}

	for _, xj := range robot.Joints {
		if xj.Parent == nil || xj.Parent.Link == "" || xj.Child == nil || xj.Child.Link == "" {
			doc.note("skipped joint %q: missing parent or child element", xj.Name)
			continue
		}
		if xj.Type == "" {
			doc.note("skipped joint %q: missing mandatory type", xj.Name)
			continue
		}

		joint := Joint{
			Name:   xj.Name,
			Type:   xj.Type,
			Parent: xj.Parent.Link,
			Child:  xj.Child.Link,
			Origin: parseOrigin(xj.Origin),
		}
		if xj.Axis != nil {
			joint.Axis = utils.ParseTriple(xj.Axis.XYZ, zeroVec3)
		}
		if xj.Limit != nil {
			joint.Limits = &Limits{
				Lower:    utils.ParseFloatDefault(xj.Limit.Lower),
				Upper:    utils.ParseFloatDefault(xj.Limit.Upper),
				Effort:   utils.ParseFloatDefault(xj.Limit.Effort),
				Velocity: utils.ParseFloatDefault(xj.Limit.Velocity),
			}
		}
		doc.Joints = append(doc.Joints, joint)
	}

	return doc, nil
}

func (d *Document) note(format string, args ...interface{}) {
	note := fmt.Sprintf(format, args...)
	log.Printf("[urdf] %s", note)
	d.Notes = append(d.Notes, note)
}
