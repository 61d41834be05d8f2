/*
Package feature defines the canonical event contract produced by the
feature decoders.

A decoder drives a Handler with a strictly nested callback sequence per
document:

	OnStart
	  OnFeatureStart
	    OnValue | OnObjectStart ... OnObjectEnd | OnArrayStart ... OnArrayEnd
	  OnFeatureEnd
	OnEnd

Every callback receives the decoder's Context. The handler reads the path,
indexes, value and geometry state from it and must not mutate them. A
non-nil error returned by a callback aborts the decode and is returned to
the caller that pushed the input.
*/
package feature
