// Package docx loads the text content of Office Open XML word-processing
// documents.
//
// Load accepts the raw bytes of a .docx file and returns a model.Document
// with the paragraphs of word/document.xml in reading order, the detected
// headings and the core properties from docProps/core.xml. Table cells are
// returned as ordinary paragraphs.
package docx
