/*
go-cascade runs classic multi-scale cascade object detection on grayscale
images.  It loads stump based Haar and LBP classifiers from OpenCV XML
cascade files, builds a scale pyramid of integral images for the frame
size, scans every pyramid level with a sliding window spread across a
worker pool and groups the raw hits into final detections.

A Detection instance is initialised once for a fixed frame size and then
reused across frames, which keeps the per frame work down to integral
table updates and window scans.  Use a Pool to run several instances in
parallel over a video stream.

See example code and usage in the example subdirectory.
*/
package cascade
