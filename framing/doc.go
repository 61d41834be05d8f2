/*
Package framing splits XML input into markup and character data tokens.

SplitMarkup is a bufio.SplitFunc. It returns one token per call: a start
or end tag, an empty-element tag, a comment, a CDATA section, a processing
instruction, a document type declaration, or a run of character data up to
the next '<'. It keeps no state between calls, so it can resume at any
chunk boundary: when the buffered input does not yet hold a complete token
it asks for more data.

SplitMarkup returns io.ErrUnexpectedEOF when input terminates inside
markup.
*/
package framing
