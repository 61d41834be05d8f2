/*
Package transport moves document bytes from the network or the file system
into a stream.Feeder.

Feed drives a decoder from an io.Reader, honouring context cancellation
between reads. Writer is the inverse adapter: an io.WriteCloser pushing
every Write to the decoder, e.g. as the destination of io.Copy or a
multi-writer teeing a response body.
*/
package transport
